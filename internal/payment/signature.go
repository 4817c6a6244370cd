package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature means the webhook payload failed authentication.
// Nothing about an unverified payload may be trusted, including its event
// type and payment reference.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// signatureTolerance bounds how old a signed timestamp may be, limiting
// replay of captured webhook deliveries.
const signatureTolerance = 5 * time.Minute

// VerifyEvent authenticates a raw webhook delivery and parses it. The
// signature header has the form "t=<unix>,v1=<hex hmac>", where the hmac is
// HMAC-SHA256(secret, "<unix>.<payload>").
func VerifyEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if age := time.Since(time.Unix(timestamp, 0)); age > signatureTolerance || age < -signatureTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed hex signature", ErrInvalidSignature)
	}
	if !hmac.Equal(expected, provided) {
		return nil, ErrInvalidSignature
	}

	var p eventPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse verified event: %w", err)
	}

	return &Event{
		ID:               p.ID,
		Kind:             kindFromType(p.Type),
		PaymentReference: p.PaymentID,
		OrderID:          p.Metadata.OrderID,
	}, nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signature = value
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("%w: missing timestamp or signature", ErrInvalidSignature)
	}
	return timestamp, signature, nil
}

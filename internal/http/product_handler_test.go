package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akarpov/go_shop/internal/catalog"
	"github.com/akarpov/go_shop/internal/domain"
)

func withProductID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("product_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateProduct_Success(t *testing.T) {
	handler := NewProductHandler(catalog.NewMemoryStore(), 5*time.Second)

	body, _ := json.Marshal(ProductRequestDTO{
		Name:  "Mug",
		Price: "10.00",
		Stock: 5,
	})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/admin/products", bytes.NewReader(body))

	handler.CreateProduct(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body)
	}

	var response domain.Product
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected generated product id")
	}
	if response.Name != "Mug" {
		t.Errorf("expected name 'Mug', got '%s'", response.Name)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	handler := NewProductHandler(catalog.NewMemoryStore(), 5*time.Second)

	cases := []ProductRequestDTO{
		{Name: "", Price: "10.00"},
		{Name: "Mug", Price: "0"},
		{Name: "Mug", Price: "-1.00"},
		{Name: "Mug", Price: "not-a-number"},
		{Name: "Mug", Price: "10.00", Stock: -1},
	}

	for i, dto := range cases {
		body, _ := json.Marshal(dto)
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/v1/admin/products", bytes.NewReader(body))

		handler.CreateProduct(recorder, request)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected %d, got %d", i, http.StatusBadRequest, recorder.Code)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	handler := NewProductHandler(catalog.NewMemoryStore(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withProductID(httptest.NewRequest("GET", "/api/v1/products/product-999", nil), "product-999")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	handler := NewProductHandler(catalog.NewMemoryStore(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/products", nil)

	handler.ListProducts(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(recorder.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw) == "null" {
		t.Error("expected empty array, got null")
	}
}

package varejofacil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"mimiops/internal"
	"mimiops/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	cfg, _ := config.Load()
	cfg.VFBaseURL = "https://example.test/api"
	cfg.VFRateLimitRPS = 1000
	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func jsonResponse(status int, payload any) *http.Response {
	blob, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(blob))),
		Header:     make(http.Header),
	}
}

func TestAuthenticate(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req authRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "op" || req.Password != "secret" {
			return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "bad credentials"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]string{"accessToken": "tok-1"}), nil
	})

	token, err := client.Authenticate(context.Background(), "op", "secret")
	if err != nil || token != "tok-1" {
		t.Fatalf("got token=%q err=%v", token, err)
	}

	if _, err := client.Authenticate(context.Background(), "op", "wrong"); !errors.Is(err, internal.ErrAuth) {
		t.Fatalf("got %v want ErrAuth", err)
	}
	if _, err := client.Authenticate(context.Background(), "", ""); !internal.IsUserInput(err) {
		t.Fatalf("got %v want user input error", err)
	}
}

func TestLookupByBarcodePadsToEAN13(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/v1/produto/produtos/consulta/0000000000123" {
			t.Fatalf("barcode not padded: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("missing bearer token: %q", got)
		}
		return jsonResponse(http.StatusOK, map[string]any{"id": 42, "descricao": "CANETA AZUL"}), nil
	})

	product, err := client.LookupByBarcode(context.Background(), "tok-1", "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.ID != 42 || product.Description != "CANETA AZUL" {
		t.Fatalf("got %+v", product)
	}
}

func TestLookupByBarcodeMiss(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, map[string]string{}), nil
	})
	if _, err := client.LookupByBarcode(context.Background(), "t", "123"); !errors.Is(err, internal.ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}

	if _, err := client.LookupByBarcode(context.Background(), "t", "A-10"); !internal.IsUserInput(err) {
		t.Fatalf("non numeric barcode: got %v", err)
	}
}

func TestGetPricesFiltersStores(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/v1/produto/produtos/42/precos" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, map[string]any{"items": []map[string]any{
			{"id": 1, "lojaId": 1, "precoVenda": 9.9, "precoCusto": 4.5},
			{"id": 2, "lojaId": 3, "precoVenda": 8.0, "precoCusto": 4.0},
			{"id": 3, "lojaId": 5, "precoVenda": 10.5, "precoCusto": 4.5},
			{"id": 4, "lojaId": 2, "precoVenda": 9.0, "precoCusto": 4.5},
		}}), nil
	})

	prices, err := client.GetPrices(context.Background(), "t", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 3 {
		t.Fatalf("got %d records want 3 (store 3 dropped)", len(prices))
	}
	if prices[0].StoreID != 1 || prices[1].StoreID != 5 || prices[2].StoreID != 2 {
		t.Fatalf("vendor order not preserved: %+v", prices)
	}
}

func TestUpdatePrice(t *testing.T) {
	var got internal.PriceUpdate
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/produto/precos/7" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		return jsonResponse(http.StatusOK, map[string]string{}), nil
	})

	sale := 12.5
	if err := client.UpdatePrice(context.Background(), "t", 7, internal.PriceUpdate{SalePrice: &sale}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SalePrice == nil || *got.SalePrice != 12.5 || got.CostPrice != nil {
		t.Fatalf("payload %+v", got)
	}

	if err := client.UpdatePrice(context.Background(), "t", 7, internal.PriceUpdate{}); !internal.IsUserInput(err) {
		t.Fatalf("empty update: got %v", err)
	}
}

func TestRemoteErrorSurfacedVerbatim(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, map[string]string{"error": "upstream down"}), nil
	})

	_, err := client.GetPrices(context.Background(), "t", 42)
	var re *internal.RemoteError
	if !errors.As(err, &re) || re.Status != http.StatusBadGateway {
		t.Fatalf("got %v", err)
	}
}

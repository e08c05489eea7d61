// Package varejofacil is the client for the vendor ERP's REST API.
// Payload field names and the store-id filter are the remote system's
// contract and are preserved verbatim.
package varejofacil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mimiops/internal"
	"mimiops/internal/config"
	"mimiops/internal/util"
)

// Only these stores carry managed prices; records for any other store
// id are dropped from responses.
var priceStoreIDs = map[int64]struct{}{1: {}, 2: {}, 5: {}}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.VFBaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.VFTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.VFRateLimitRPS),
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
}

// Authenticate exchanges operator credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context, user, pass string) (string, error) {
	if strings.TrimSpace(user) == "" || strings.TrimSpace(pass) == "" {
		return "", internal.NewUserInputError("credentials", "user and password are required")
	}

	body, status, err := c.do(ctx, http.MethodPost, "/auth", "", authRequest{Username: user, Password: pass})
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "", internal.ErrAuth
	}
	if status < 200 || status >= 300 {
		return "", &internal.RemoteError{Op: "varejofacil auth", Status: status, Body: string(body)}
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", internal.ErrAuth
	}
	return resp.AccessToken, nil
}

// LookupByBarcode resolves a product by EAN. The barcode is
// zero-padded to 13 digits first; the vendor stores them that way.
func (c *Client) LookupByBarcode(ctx context.Context, token, barcode string) (internal.VendorProduct, error) {
	ean := util.PadBarcode(barcode)
	if !util.IsDigits(ean) {
		return internal.VendorProduct{}, internal.NewUserInputError("barcode", "must be numeric")
	}

	body, status, err := c.do(ctx, http.MethodGet, "/v1/produto/produtos/consulta/"+ean, token, nil)
	if err != nil {
		return internal.VendorProduct{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return internal.VendorProduct{}, internal.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return internal.VendorProduct{}, internal.ErrAuth
	case status < 200 || status >= 300:
		return internal.VendorProduct{}, &internal.RemoteError{Op: "varejofacil product lookup", Status: status, Body: string(body)}
	}

	var product internal.VendorProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return internal.VendorProduct{}, fmt.Errorf("decode product: %w", err)
	}
	return product, nil
}

type pricesResponse struct {
	Items []internal.PriceRecord `json:"items"`
}

// GetPrices returns the product's price records for the managed
// stores, in the order the vendor sends them.
func (c *Client) GetPrices(ctx context.Context, token string, productID int64) ([]internal.PriceRecord, error) {
	path := fmt.Sprintf("/v1/produto/produtos/%d/precos", productID)
	body, status, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, internal.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, internal.ErrAuth
	case status < 200 || status >= 300:
		return nil, &internal.RemoteError{Op: "varejofacil prices", Status: status, Body: string(body)}
	}

	var resp pricesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	out := make([]internal.PriceRecord, 0, len(resp.Items))
	for _, record := range resp.Items {
		if _, ok := priceStoreIDs[record.StoreID]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

// UpdatePrice writes new values onto one price record.
func (c *Client) UpdatePrice(ctx context.Context, token string, priceID int64, update internal.PriceUpdate) error {
	if update.SalePrice == nil && update.CostPrice == nil {
		return internal.NewUserInputError("price", "nothing to update")
	}

	path := fmt.Sprintf("/v1/produto/precos/%d", priceID)
	body, status, err := c.do(ctx, http.MethodPut, path, token, update)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusNotFound:
		return internal.ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return internal.ErrAuth
	case status < 200 || status >= 300:
		return &internal.RemoteError{Op: "varejofacil price update", Status: status, Body: string(body)}
	}
	return nil
}

// do issues one request. No retry: a failed call surfaces to the
// caller as-is.
func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, int, error) {
	c.limiter.WaitTurn()

	var reqBody io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &internal.RemoteError{Op: "varejofacil " + method + " " + path, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

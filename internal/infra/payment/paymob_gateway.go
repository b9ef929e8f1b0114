package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"museum-ticketing/internal/domain"
	"museum-ticketing/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://accept.paymob.com"

// PaymobDirectGateway implements adapter.PaymentGateway against the
// Paymob accept API using direct HTTP calls. Auth tokens are short
// lived, so every operation authenticates first.
type PaymobDirectGateway struct {
	apiKey        string
	integrationID int64
	iframeID      string
	baseURL       string
	client        *http.Client
}

var _ adapter.PaymentGateway = (*PaymobDirectGateway)(nil)

// NewPaymobDirectGateway creates a new direct Paymob gateway. baseURL
// may be empty to use the production endpoint.
func NewPaymobDirectGateway(apiKey string, integrationID int64, iframeID, baseURL string) (*PaymobDirectGateway, error) {
	if apiKey == "" || integrationID <= 0 || iframeID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PaymobDirectGateway{
		apiKey:        apiKey,
		integrationID: integrationID,
		iframeID:      iframeID,
		baseURL:       baseURL,
		client:        &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *PaymobDirectGateway) Name() string { return "paymob" }

type paymobAuthResponse struct {
	Token string `json:"token"`
}

type paymobOrderResponse struct {
	ID int64 `json:"id"`
}

type paymobPaymentKeyResponse struct {
	Token string `json:"token"`
}

// CreateOrder registers an order with Paymob and returns the order id
// the gateway assigned.
func (g *PaymobDirectGateway) CreateOrder(ctx context.Context, amountCents int64, currency string) (int64, error) {
	authToken, err := g.authenticate(ctx)
	if err != nil {
		return 0, err
	}

	var resp paymobOrderResponse
	err = g.post(ctx, "/api/ecommerce/orders", map[string]interface{}{
		"auth_token":      authToken,
		"amount_cents":    amountCents,
		"currency":        currency,
		"delivery_needed": false,
		"items":           []interface{}{},
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.ID <= 0 {
		return 0, fmt.Errorf("paymob order registration returned no id: %w", domain.ErrGatewayFailure)
	}
	return resp.ID, nil
}

// PaymentKey requests the short-lived token that authorizes the hosted
// checkout for one order.
func (g *PaymobDirectGateway) PaymentKey(ctx context.Context, orderID int64, amountCents int64, currency string, billing adapter.BillingData) (string, error) {
	authToken, err := g.authenticate(ctx)
	if err != nil {
		return "", err
	}

	var resp paymobPaymentKeyResponse
	err = g.post(ctx, "/api/acceptance/payment_keys", map[string]interface{}{
		"auth_token":     authToken,
		"amount_cents":   amountCents,
		"currency":       currency,
		"order_id":       orderID,
		"integration_id": g.integrationID,
		"expiration":     3600,
		"billing_data": map[string]interface{}{
			"first_name":   orEmpty(billing.FirstName, "NA"),
			"last_name":    orEmpty(billing.LastName, "NA"),
			"email":        orEmpty(billing.Email, "NA"),
			"phone_number": orEmpty(billing.Phone, "NA"),
			// Paymob rejects requests with missing address fields.
			"street": "NA", "building": "NA", "floor": "NA", "apartment": "NA",
			"city": "NA", "state": "NA", "country": "NA", "postal_code": "NA",
			"shipping_method": "NA",
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("paymob payment key request returned no token: %w", domain.ErrGatewayFailure)
	}
	return resp.Token, nil
}

// CheckoutURL builds the hosted iframe URL for a payment key.
func (g *PaymobDirectGateway) CheckoutURL(token string) string {
	return fmt.Sprintf("%s/api/acceptance/iframes/%s?payment_token=%s", g.baseURL, g.iframeID, url.QueryEscape(token))
}

func (g *PaymobDirectGateway) authenticate(ctx context.Context) (string, error) {
	var resp paymobAuthResponse
	err := g.post(ctx, "/api/auth/tokens", map[string]interface{}{
		"api_key": g.apiKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("paymob auth returned no token: %w", domain.ErrGatewayFailure)
	}
	return resp.Token, nil
}

func (g *PaymobDirectGateway) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("paymob %s: %w: %v", path, domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paymob %s: status %d: %w, body: %s", path, resp.StatusCode, domain.ErrGatewayFailure, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(respBody))
	}
	return nil
}

func orEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Package client is a Go client for the POS REST API, used by till
// terminals and integration scripts.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-ws/internal/model"
)

// APIError is a non-2xx response decoded from the envelope.
type APIError struct {
	Status   int
	Messages []string
	// Data carries the structured payload, e.g. available stock on a 422.
	Data json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pos api error: status=%d, message=%s", e.Status, strings.Join(e.Messages, "; "))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Client is safe for concurrent use; the token pair is refreshed in place.
type Client struct {
	http *resty.Client

	mu     sync.Mutex
	tokens tokens
}

// New builds a client for the API rooted at baseURL (e.g. http://localhost:3000).
func New(baseURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v1").
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Client{http: restyClient}
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.AccessToken
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Tokens tokens `json:"tokens"`
	}
	if err := c.send(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out, false); err != nil {
		return err
	}
	c.mu.Lock()
	c.tokens = out.Tokens
	c.mu.Unlock()
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.tokens.RefreshToken
	c.mu.Unlock()
	if refreshToken == "" {
		return &APIError{Status: http.StatusUnauthorized, Messages: []string{"not logged in"}}
	}

	var out struct {
		Tokens tokens `json:"tokens"`
	}
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &out, false); err != nil {
		return err
	}
	c.mu.Lock()
	c.tokens = out.Tokens
	c.mu.Unlock()
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.tokens = tokens{}
	c.mu.Unlock()
	return nil
}

func (c *Client) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	var products []model.Product
	err := c.do(ctx, http.MethodGet, "/products?q="+url.QueryEscape(query), nil, &products)
	return products, err
}

func (c *Client) GetProductByBarcode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, "/products/barcode/"+url.PathEscape(code), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) CreateSale(ctx context.Context, lines []CartLine) (*model.SaleResponse, error) {
	var sale model.SaleResponse
	if err := c.do(ctx, http.MethodPost, "/sales", map[string]interface{}{"items": lines}, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Client) AddStock(ctx context.Context, productID uuid.UUID, qty decimal.Decimal, note string) (*model.Product, error) {
	var product model.Product
	body := map[string]interface{}{"quantity": qty, "note": note}
	if err := c.do(ctx, http.MethodPost, "/products/"+productID.String()+"/stock", body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// do sends an authenticated request, refreshing the token pair once on a 401.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.send(ctx, method, path, body, out, true)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		if rerr := c.refresh(ctx); rerr != nil {
			return err
		}
		return c.send(ctx, method, path, body, out, true)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}, authenticated bool) error {
	env := new(envelope)
	req := c.http.R().
		SetContext(ctx).
		SetResult(env).
		SetError(env)
	if authenticated {
		req.SetAuthToken(c.accessToken())
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode(), Messages: env.Errors, Data: env.Data}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

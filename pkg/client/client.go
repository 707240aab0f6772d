// Package client talks to the product service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrUnavailable = errors.New("product service unavailable")
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// APIError is a non-2xx reply other than 404.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("product api: status=%d message=%q", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// New takes the service root plus the products prefix, e.g. http://localhost:8888/products.
func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) List(ctx context.Context) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-products", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodGet, "/get-product-details/"+url.PathEscape(id), nil, &p)
	return p, err
}

// Create sends price as given, so callers may pass a number or a string.
func (c *Client) Create(ctx context.Context, name, description string, price any) (Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	body := map[string]any{"name": name, "description": description, "price": price}
	if err := c.do(ctx, http.MethodPost, "/create-product", body, &out); err != nil {
		return Product{}, err
	}
	return out.Product, nil
}

// Update sends only the keys present in fields.
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodPut, "/update-product/"+url.PathEscape(id), fields, &p)
	return p, err
}

func (c *Client) Delete(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodDelete, "/delete-product/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var fail struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &fail)

	if resp.StatusCode == http.StatusNotFound && method != http.MethodPost {
		return ErrNotFound
	}
	return &APIError{Status: resp.StatusCode, Message: fail.Message}
}

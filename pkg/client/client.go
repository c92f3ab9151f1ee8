package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/coffeeshop/pkg/drinks"
	"github.com/platinummonkey/coffeeshop/pkg/httputil"
)

// Error is a failed API call, decoded from the error envelope
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("coffeeshop API error %d: %s", e.Status, e.Message)
}

// Client calls the drinks API
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL. httpClient carries
// credentials; use TokenClient or StaticTokenClient for protected routes.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

type drinkPayload struct {
	Title  string              `json:"title"`
	Recipe []drinks.Ingredient `json:"recipe"`
}

type shortResponse struct {
	Success bool           `json:"success"`
	Drinks  []drinks.Short `json:"drinks"`
}

type longResponse struct {
	Success bool          `json:"success"`
	Drinks  []drinks.Long `json:"drinks"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

// ListDrinks calls GET /drinks. An empty catalog is an empty slice.
func (c *Client) ListDrinks(ctx context.Context) ([]drinks.Short, error) {
	var out shortResponse
	if err := c.do(ctx, http.MethodGet, "/drinks", nil, &out); err != nil {
		if isNotFound(err) {
			return []drinks.Short{}, nil
		}
		return nil, err
	}
	return out.Drinks, nil
}

// ListDrinksDetail calls GET /drinks-detail. An empty catalog is an empty slice.
func (c *Client) ListDrinksDetail(ctx context.Context) ([]drinks.Long, error) {
	var out longResponse
	if err := c.do(ctx, http.MethodGet, "/drinks-detail", nil, &out); err != nil {
		if isNotFound(err) {
			return []drinks.Long{}, nil
		}
		return nil, err
	}
	return out.Drinks, nil
}

// CreateDrink calls POST /drinks
func (c *Client) CreateDrink(ctx context.Context, title string, recipe []drinks.Ingredient) (*drinks.Long, error) {
	return c.writeDrink(ctx, http.MethodPost, "/drinks", title, recipe)
}

// UpdateDrink calls PATCH /drinks/{id}
func (c *Client) UpdateDrink(ctx context.Context, id int64, title string, recipe []drinks.Ingredient) (*drinks.Long, error) {
	return c.writeDrink(ctx, http.MethodPatch, "/drinks/"+strconv.FormatInt(id, 10), title, recipe)
}

// DeleteDrink calls DELETE /drinks/{id} and returns the deleted id
func (c *Client) DeleteDrink(ctx context.Context, id int64) (int64, error) {
	var out deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/drinks/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return 0, err
	}
	return out.Delete, nil
}

func (c *Client) writeDrink(ctx context.Context, method, path, title string, recipe []drinks.Ingredient) (*drinks.Long, error) {
	if recipe == nil {
		recipe = []drinks.Ingredient{}
	}
	var out longResponse
	if err := c.do(ctx, method, path, drinkPayload{Title: title, Recipe: recipe}, &out); err != nil {
		return nil, err
	}
	if len(out.Drinks) != 1 {
		return nil, fmt.Errorf("expected one drink in response, got %d", len(out.Drinks))
	}
	return &out.Drinks[0], nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope httputil.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Message == "" {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &Error{Status: resp.StatusCode, Message: envelope.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Status == http.StatusNotFound
}

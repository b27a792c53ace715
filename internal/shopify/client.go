package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/model"
)

const DefaultAPIVersion = "2024-01"

// Client calls the Shopify Admin REST API with a shop's offline access token.
type Client struct {
	http       *http.Client
	apiVersion string
	// baseURL overrides https://{shop domain}; used by tests.
	baseURL string
}

func NewClient(apiVersion string, timeout time.Duration) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		apiVersion: apiVersion,
	}
}

// WithBaseURL points the client at a fixed host instead of the shop domain.
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(u, "/")
	return &cp
}

func (c *Client) endpoint(shop *model.Shop, path string) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + shop.Domain
	}
	return fmt.Sprintf("%s/admin/api/%s/%s", base, c.apiVersion, path)
}

type orderTags struct {
	Order struct {
		ID   int64  `json:"id"`
		Tags string `json:"tags"`
	} `json:"order"`
}

// SetOrderTags adds tags to the order, keeping the tags it already has.
func (c *Client) SetOrderTags(ctx context.Context, shop *model.Shop, orderID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	path := "orders/" + orderID + ".json"
	raw, err := c.do(ctx, shop, http.MethodGet, path+"?fields=id,tags", nil)
	if err != nil {
		return err
	}
	var current orderTags
	if err := json.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("failed to decode order tags: %w", err)
	}

	merged := MergeTags(current.Order.Tags, tags)
	if merged == current.Order.Tags {
		return nil
	}

	var body orderTags
	body.Order.ID = current.Order.ID
	body.Order.Tags = merged
	_, err = c.do(ctx, shop, http.MethodPut, path, body)
	return err
}

func (c *Client) do(ctx context.Context, shop *model.Shop, method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(shop, path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", shop.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

// MergeTags appends the new tags to Shopify's comma separated tag string,
// skipping case-insensitive duplicates.
func MergeTags(existing string, add []string) string {
	out := []string{}
	seen := map[string]bool{}
	push := func(t string) {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	for _, t := range strings.Split(existing, ",") {
		push(t)
	}
	for _, t := range add {
		push(t)
	}
	return strings.Join(out, ", ")
}

// Package pricing implements the pricing-service client.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ordersvc/pkg/order"
	"ordersvc/pkg/otel"
)

var (
	// ErrNotFound means the pricing service has no quote for the order.
	ErrNotFound = errors.New("quote not found")

	// ErrUnavailable means the pricing service could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("pricing service unavailable")
)

// Client fetches quotes from the pricing service over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a pricing client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Quote fetches the quote for the given order id.
func (c *Client) Quote(ctx context.Context, orderID string) (order.PriceQuote, error) {
	ctx, span := otel.AddSpan(ctx, "pricing.quote", "order_id", orderID)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/price/"+orderID, nil)
	if err != nil {
		return order.PriceQuote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return order.PriceQuote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return order.PriceQuote{}, fmt.Errorf("%w: order %q", ErrNotFound, orderID)
	case resp.StatusCode != http.StatusOK:
		return order.PriceQuote{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var q order.PriceQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return order.PriceQuote{}, fmt.Errorf("%w: decode quote: %v", ErrUnavailable, err)
	}
	if q.OrderID == "" {
		q.OrderID = orderID
	}
	return q, nil
}

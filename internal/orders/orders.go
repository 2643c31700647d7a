// Package orders is the client for the upstream order service: submit
// checkout, read order history, cancel, and the admin status surfaces.
package orders

import (
	"context"
	"fmt"
	"net/url"

	"cura-service/internal/upstream"
)

type Conf struct {
	client *upstream.Client
}

func NewConf(client *upstream.Client) (*Conf, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client is nil")
	}
	return &Conf{client: client}, nil
}

// CreateOrder submits a new order. Callers clear the cart only after
// this returns successfully.
func (c *Conf) CreateOrder(ctx context.Context, items []NewOrderItem, shippingAddress, paymentMethod string) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}
	body := struct {
		Items           []NewOrderItem `json:"items"`
		ShippingAddress string         `json:"shippingAddress"`
		PaymentMethod   string         `json:"paymentMethod"`
	}{items, shippingAddress, paymentMethod}

	var resp struct {
		Success bool   `json:"success"`
		Order   Order  `json:"order"`
		Message string `json:"message"`
	}
	if err := c.client.Post(ctx, "/orders", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to create order", resp.Message)
	}
	return &resp.Order, nil
}

func (c *Conf) GetOrders(ctx context.Context) ([]Order, error) {
	var resp struct {
		Success bool    `json:"success"`
		Orders  []Order `json:"orders"`
		Message string  `json:"message"`
	}
	if err := c.client.Get(ctx, "/orders", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to fetch orders", resp.Message)
	}
	return resp.Orders, nil
}

func (c *Conf) GetOrder(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id is empty")
	}
	var resp struct {
		Success bool   `json:"success"`
		Order   Order  `json:"order"`
		Message string `json:"message"`
	}
	if err := c.client.Get(ctx, "/orders/"+url.PathEscape(id), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to fetch order", resp.Message)
	}
	return &resp.Order, nil
}

func (c *Conf) CancelOrder(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("order id is empty")
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.client.Post(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, &resp); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", id, err)
	}
	if !resp.Success {
		return upstream.Failure("failed to cancel order", resp.Message)
	}
	return nil
}

// UpdateStatus is the admin surface for moving an order through its
// lifecycle.
func (c *Conf) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id is empty")
	}
	body := struct {
		Status string `json:"status"`
	}{status}

	var resp struct {
		Success bool   `json:"success"`
		Order   Order  `json:"order"`
		Message string `json:"message"`
	}
	if err := c.client.Put(ctx, "/orders/"+url.PathEscape(id)+"/status", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to update order status", resp.Message)
	}
	return &resp.Order, nil
}

// UpdatePayment is the admin surface for recording payment state.
func (c *Conf) UpdatePayment(ctx context.Context, id, paymentStatus string) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id is empty")
	}
	body := struct {
		PaymentStatus string `json:"paymentStatus"`
	}{paymentStatus}

	var resp struct {
		Success bool   `json:"success"`
		Order   Order  `json:"order"`
		Message string `json:"message"`
	}
	if err := c.client.Put(ctx, "/orders/"+url.PathEscape(id)+"/payment", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to update order payment", resp.Message)
	}
	return &resp.Order, nil
}

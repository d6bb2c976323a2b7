// Package ingest contains the type-specific handlers fed by the stream
// ingestion pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/google/uuid"
)

// CustomerPayload is the JSON body of a customer-stream message.
type CustomerPayload struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	TotalSpend float64 `json:"totalSpend"`
	VisitCount int     `json:"visitCount"`
}

// OrderPayload is the JSON body of an order-stream message.
type OrderPayload struct {
	OrderID       string  `json:"orderId"`
	CustomerEmail string  `json:"customerEmail"`
	Amount        float64 `json:"amount"`
}

// CustomerHandler creates customer records from customer-stream messages,
// deduplicating by email: a message for an already known email succeeds as a
// no-op, which keeps the handler safe under redelivery.
type CustomerHandler struct {
	customers xeno.CustomerStore
	logger    xeno.Logger
}

var _ xeno.Handler = (*CustomerHandler)(nil)
var _ xeno.Loggable = (*CustomerHandler)(nil)

func NewCustomerHandler(customers xeno.CustomerStore) *CustomerHandler {
	if customers == nil {
		panic("customers store is mandatory")
	}
	return &CustomerHandler{
		customers: customers,
		logger:    &xeno.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (h *CustomerHandler) SetLogger(l xeno.Logger) {
	h.logger = l
}

func (h *CustomerHandler) Handle(ctx context.Context, payload []byte) error {
	var p CustomerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding the customer payload: %w", err)
	}
	if p.Email == "" {
		return errors.New("customer payload has no email")
	}

	existing, err := h.customers.FindByEmail(ctx, p.Email)
	if err != nil {
		return fmt.Errorf("looking up customer '%s': %w", p.Email, err)
	}
	if existing != nil {
		h.logger.Debug(fmt.Sprintf("customer with email '%s' already exists", p.Email))
		return nil
	}

	c := &xeno.Customer{
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		TotalSpend: p.TotalSpend,
		VisitCount: p.VisitCount,
		LastVisit:  time.Now().UTC(),
	}
	if err := h.customers.Create(ctx, c); err != nil {
		return fmt.Errorf("creating customer '%s': %w", p.Email, err)
	}
	h.logger.Info(fmt.Sprintf("processed customer '%s'", c.Email))
	return nil
}

// OrderHandler persists orders from order-stream messages. An order whose
// customer email is unknown is a data-integrity failure, not a retryable
// condition: the pipeline routes it to the dead letter log.
type OrderHandler struct {
	customers xeno.CustomerStore
	orders    xeno.OrderStore
	logger    xeno.Logger
}

var _ xeno.Handler = (*OrderHandler)(nil)
var _ xeno.Loggable = (*OrderHandler)(nil)

func NewOrderHandler(customers xeno.CustomerStore, orders xeno.OrderStore) *OrderHandler {
	if customers == nil || orders == nil {
		panic("customer and order stores are mandatory")
	}
	return &OrderHandler{
		customers: customers,
		orders:    orders,
		logger:    &xeno.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (h *OrderHandler) SetLogger(l xeno.Logger) {
	h.logger = l
}

func (h *OrderHandler) Handle(ctx context.Context, payload []byte) error {
	var p OrderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decoding the order payload: %w", err)
	}
	if p.CustomerEmail == "" {
		return errors.New("order payload has no customer email")
	}

	customer, err := h.customers.FindByEmail(ctx, p.CustomerEmail)
	if err != nil {
		return fmt.Errorf("looking up customer '%s': %w", p.CustomerEmail, err)
	}
	if customer == nil {
		return fmt.Errorf("customer not found for order: %s", p.CustomerEmail)
	}

	o := &xeno.Order{
		OrderID:       p.OrderID,
		CustomerID:    customer.ID,
		CustomerEmail: p.CustomerEmail,
		Amount:        p.Amount,
	}
	if o.OrderID == "" {
		o.OrderID = uuid.NewString()
	}
	if err := h.orders.CreateWithSpend(ctx, o); err != nil {
		return fmt.Errorf("persisting order '%s': %w", o.OrderID, err)
	}
	h.logger.Info(fmt.Sprintf("processed order '%s' for customer '%s'", o.OrderID, p.CustomerEmail))
	return nil
}

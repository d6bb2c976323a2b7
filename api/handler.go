// Package api exposes the HTTP surface of the ingestion core: the vendor
// receipt endpoints and the customer/order producers feeding the streams.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/ingest"
	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/go-chi/chi/v5"
)

// Sender is the vendor-send operation consumed by the /vendor/send endpoint.
type Sender interface {
	Send(ctx context.Context, userID, campaignID, message string) (*xeno.DeliveryReceipt, error)
}

// Handler holds the collaborators of the HTTP endpoints.
type Handler struct {
	queue     xeno.ReceiptQueue
	sender    Sender
	producer  xeno.StreamProducer
	customers xeno.CustomerStore
	logger    xeno.Logger
}

// NewHandler constructs the HTTP handler.
func NewHandler(queue xeno.ReceiptQueue, sender Sender, producer xeno.StreamProducer, customers xeno.CustomerStore, logger xeno.Logger) *Handler {
	if queue == nil || sender == nil || producer == nil || customers == nil {
		panic("queue, sender, producer and customers are mandatory")
	}
	if logger == nil {
		logger = &xeno.NopLogger{}
	}
	return &Handler{
		queue:     queue,
		sender:    sender,
		producer:  producer,
		customers: customers,
		logger:    logger,
	}
}

// NewRouter registers the HTTP routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestLogger)

	r.Get("/healthz", h.healthz)
	r.Post("/delivery-receipt", h.deliveryReceipt)
	r.Post("/vendor/send", h.vendorSend)

	r.Route("/api", func(r chi.Router) {
		r.Get("/customers", h.listCustomers)
		r.Post("/customers", h.createCustomer)
		r.Post("/orders", h.createOrder)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug(fmt.Sprintf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start)))
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	depth, err := h.queue.Size(r.Context())
	if err != nil {
		// The queue depth is observability only; liveness does not depend
		// on it.
		h.logger.Warn(fmt.Sprintf("reading the receipt queue depth: %v", err))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"queueDepth": depth,
	})
}

type deliveryReceiptRequest struct {
	UserID     string `json:"userId"`
	CampaignID string `json:"campaignId"`
	Status     string `json:"status"`
}

// deliveryReceipt accepts one vendor callback and buffers it for the batch
// aggregator. Acceptance is not confirmation of aggregation.
func (h *Handler) deliveryReceipt(w http.ResponseWriter, r *http.Request) {
	var req deliveryReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.CampaignID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	status := xeno.DeliveryStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	receipt := &xeno.DeliveryReceipt{
		UserID:     req.UserID,
		CampaignID: req.CampaignID,
		Status:     status,
		Timestamp:  time.Now().UTC(),
	}
	if err := h.queue.Enqueue(r.Context(), receipt); err != nil {
		h.logger.Error("queueing a delivery receipt", err)
		writeError(w, http.StatusInternalServerError, "Failed to queue delivery receipt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Delivery receipt queued successfully",
	})
}

type vendorSendRequest struct {
	UserID     string `json:"userId"`
	CampaignID string `json:"campaignId"`
	Message    string `json:"message"`
}

// vendorSend triggers the vendor simulator and reports the simulated
// outcome.
func (h *Handler) vendorSend(w http.ResponseWriter, r *http.Request) {
	var req vendorSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.CampaignID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	receipt, err := h.sender.Send(r.Context(), req.UserID, req.CampaignID, req.Message)
	if err != nil {
		h.logger.Error("simulating a vendor send", err)
		writeError(w, http.StatusInternalServerError, "Failed to process message delivery")
		return
	}

	message := "Message delivered successfully"
	if receipt.Status == xeno.StatusFailed {
		message = "Message delivery failed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  receipt.Status,
		"message": message,
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.logger.Error("listing customers", err)
		writeError(w, http.StatusInternalServerError, "Error fetching customers")
		return
	}
	if customers == nil {
		customers = []*xeno.Customer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    customers,
	})
}

// createCustomer validates the record and publishes it to the customer
// stream. Persistence happens asynchronously in the ingestion pipeline, so
// the endpoint answers 202.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var p ingest.CustomerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p.Name == "" || p.Email == "" || p.Phone == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, email, and phone are required")
		return
	}

	if err := h.publish(r.Context(), xeno.CustomerStream, p); err != nil {
		h.logger.Error("publishing a customer event", err)
		writeError(w, http.StatusInternalServerError, "Error creating customer")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "Customer accepted for processing",
	})
}

// createOrder validates the order and publishes it to the order stream.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var p ingest.OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if p.CustomerEmail == "" || p.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: customerEmail and a positive amount are required")
		return
	}

	if err := h.publish(r.Context(), xeno.OrderStream, p); err != nil {
		h.logger.Error("publishing an order event", err)
		writeError(w, http.StatusInternalServerError, "Error creating order")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "Order accepted for processing",
	})
}

func (h *Handler) publish(ctx context.Context, stream string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding the event payload: %w", err)
	}
	if _, err := h.producer.Publish(ctx, stream, raw); err != nil {
		return err
	}
	return nil
}

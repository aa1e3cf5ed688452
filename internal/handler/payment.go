package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// PaymentHandler handles HTTP requests for payments and escrow.
type PaymentHandler struct {
	escrowService *service.EscrowService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(escrowService *service.EscrowService) *PaymentHandler {
	return &PaymentHandler{escrowService: escrowService}
}

// InitiatePaymentRequest is the HTTP request body for a payment
// attempt.
type InitiatePaymentRequest struct {
	ReservationID string `json:"reservation_id"`
	Provider      string `json:"provider"`
	PhoneNumber   string `json:"phone_number"`
	CardToken     string `json:"card_token"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID             string  `json:"id"`
	ReservationID  string  `json:"reservation_id"`
	Provider       string  `json:"provider"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	EscrowStatus   string  `json:"escrow_status,omitempty"`
	TransactionRef string  `json:"transaction_ref,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             payment.ID,
		ReservationID:  payment.ReservationID,
		Provider:       string(payment.Provider),
		Amount:         payment.Amount,
		Status:         string(payment.Status),
		EscrowStatus:   string(payment.EscrowStatus),
		TransactionRef: payment.TransactionRef,
		CreatedAt:      payment.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, toPaymentResponse(payment))
	}
	return out
}

// InitiatePayment handles POST /v1/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ReservationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reservation_id is required"})
		return
	}

	payment, err := h.escrowService.Initiate(c.Request.Context(), user, service.InitiatePaymentRequest{
		ReservationID: req.ReservationID,
		Provider:      domain.PaymentProvider(req.Provider),
		PhoneNumber:   req.PhoneNumber,
		CardToken:     req.CardToken,
	})
	if err != nil {
		// A declined or timed-out attempt still produced a payment row
		// the client may want to inspect.
		if payment != nil {
			code := mapErrorToHTTPStatus(err)
			c.JSON(code, gin.H{"error": err.Error(), "payment": toPaymentResponse(payment)})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := h.escrowService.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ListReservationPayments handles GET /v1/reservations/:id/payments
func (h *PaymentHandler) ListReservationPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payments, err := h.escrowService.ListByReservation(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"payments": toPaymentResponses(payments)})
}

// ListPayments handles GET /v1/admin/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payments, err := h.escrowService.ListAll(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"payments": toPaymentResponses(payments)})
}

// ReleaseEscrow handles POST /v1/admin/reservations/:id/escrow/release
func (h *PaymentHandler) ReleaseEscrow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := h.escrowService.Release(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// RefundEscrow handles POST /v1/admin/reservations/:id/escrow/refund
func (h *PaymentHandler) RefundEscrow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payment, err := h.escrowService.Refund(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

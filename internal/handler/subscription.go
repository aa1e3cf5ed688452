package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// SubscriptionHandler handles HTTP requests for subscriptions.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// SubscriptionResponse is the HTTP representation of a subscription.
type SubscriptionResponse struct {
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	TrialUsed  bool   `json:"trial_used"`
	TrialUntil string `json:"trial_until,omitempty"`
	PaidUntil  string `json:"paid_until,omitempty"`
}

func toSubscriptionResponse(sub *domain.Subscription, status domain.SubscriptionStatus) SubscriptionResponse {
	resp := SubscriptionResponse{
		UserID:    sub.UserID,
		Status:    string(status),
		TrialUsed: sub.TrialUsed,
	}
	if !sub.TrialUntil.IsZero() {
		resp.TrialUntil = sub.TrialUntil.Format(time.RFC3339)
	}
	if !sub.PaidUntil.IsZero() {
		resp.PaidUntil = sub.PaidUntil.Format(time.RFC3339)
	}
	return resp
}

// StartTrial handles POST /v1/subscriptions/trial
func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.StartTrial(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toSubscriptionResponse(sub, sub.StatusAt(time.Now())))
}

// SubscribeRequest is the HTTP request body for paying a subscription
// period.
type SubscribeRequest struct {
	Provider     string  `json:"provider"`
	PhoneOrToken string  `json:"phone_or_token"`
	Amount       float64 `json:"amount"`
}

// Subscribe handles POST /v1/subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sub, err := h.subscriptionService.RecordPayment(c.Request.Context(), user, service.RecordPaymentRequest{
		Provider:     domain.PaymentProvider(req.Provider),
		PhoneOrToken: req.PhoneOrToken,
		Amount:       req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSubscriptionResponse(sub, sub.StatusAt(time.Now())))
}

// GetStatus handles GET /v1/subscriptions/me
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	status, sub, err := h.subscriptionService.StatusOf(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	if sub == nil {
		respondJSON(c, http.StatusOK, SubscriptionResponse{UserID: user.ID, Status: string(status)})
		return
	}

	respondJSON(c, http.StatusOK, toSubscriptionResponse(sub, status))
}

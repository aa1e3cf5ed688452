package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// DisputeHandler handles HTTP requests for disputes.
type DisputeHandler struct {
	disputeService *service.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(disputeService *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// OpenDisputeRequest is the HTTP request body for opening a dispute.
type OpenDisputeRequest struct {
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
	Description   string `json:"description"`
}

// DisputeResponse is the HTTP representation of a dispute.
type DisputeResponse struct {
	ID            string `json:"id"`
	ReservationID string `json:"reservation_id"`
	RaisedBy      string `json:"raised_by"`
	Reason        string `json:"reason"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	Resolution    string `json:"resolution,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	CreatedAt     string `json:"created_at"`
	ResolvedAt    string `json:"resolved_at,omitempty"`
}

func toDisputeResponse(dispute *domain.Dispute) DisputeResponse {
	resp := DisputeResponse{
		ID:            dispute.ID,
		ReservationID: dispute.ReservationID,
		RaisedBy:      dispute.RaisedBy,
		Reason:        dispute.Reason,
		Description:   dispute.Description,
		Status:        string(dispute.Status),
		Resolution:    dispute.Resolution,
		Outcome:       string(dispute.Outcome),
		CreatedAt:     dispute.CreatedAt.Format(time.RFC3339),
	}
	if !dispute.ResolvedAt.IsZero() {
		resp.ResolvedAt = dispute.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

// OpenDispute handles POST /v1/disputes
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ReservationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reservation_id is required"})
		return
	}
	if req.Reason == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reason is required"})
		return
	}

	dispute, err := h.disputeService.Open(c.Request.Context(), user, service.OpenDisputeRequest{
		ReservationID: req.ReservationID,
		Reason:        req.Reason,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDisputeResponse(dispute))
}

// GetDispute handles GET /v1/disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dispute, err := h.disputeService.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDisputeResponse(dispute))
}

// ResolveDisputeRequest is the HTTP request body for resolving a
// dispute.
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution"`
	Outcome    string `json:"outcome"`
}

// ResolveDispute handles POST /v1/admin/disputes/:id/resolve
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	dispute, err := h.disputeService.Resolve(c.Request.Context(), user, service.ResolveDisputeRequest{
		DisputeID:  c.Param("id"),
		Resolution: req.Resolution,
		Outcome:    domain.DisputeOutcome(req.Outcome),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDisputeResponse(dispute))
}

// ListDisputes handles GET /v1/admin/disputes
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	disputes, err := h.disputeService.ListAll(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]DisputeResponse, 0, len(disputes))
	for _, dispute := range disputes {
		out = append(out, toDisputeResponse(dispute))
	}
	respondJSON(c, http.StatusOK, gin.H{"disputes": out})
}

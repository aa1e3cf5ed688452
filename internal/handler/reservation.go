package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// ReservationHandler handles HTTP requests for reservations.
type ReservationHandler struct {
	engine *service.ReservationEngine
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(engine *service.ReservationEngine) *ReservationHandler {
	return &ReservationHandler{engine: engine}
}

// CreateReservationRequest is the HTTP request body for creating a
// reservation.
type CreateReservationRequest struct {
	TripID string `json:"trip_id"`
	Seats  int    `json:"seats"`
}

// ReservationResponse is the HTTP representation of a reservation.
type ReservationResponse struct {
	ID          string  `json:"id"`
	TripID      string  `json:"trip_id"`
	PassengerID string  `json:"passenger_id"`
	Seats       int     `json:"seats"`
	Amount      float64 `json:"amount"`
	Code        string  `json:"code"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

func toReservationResponse(reservation *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          reservation.ID,
		TripID:      reservation.TripID,
		PassengerID: reservation.PassengerID,
		Seats:       reservation.Seats,
		Amount:      reservation.Amount,
		Code:        reservation.Code,
		Status:      string(reservation.Status),
		CreatedAt:   reservation.CreatedAt.Format(time.RFC3339),
	}
}

func toReservationResponses(reservations []*domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationResponse(reservation))
	}
	return out
}

// CreateReservation handles POST /v1/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.TripID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "trip_id is required"})
		return
	}

	reservation, err := h.engine.Create(c.Request.Context(), user, service.CreateReservationRequest{
		TripID: req.TripID,
		Seats:  req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReservationResponse(reservation))
}

// GetReservation handles GET /v1/reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reservation, err := h.engine.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReservationResponse(reservation))
}

// ListReservations handles GET /v1/reservations
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reservations, err := h.engine.List(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"reservations": toReservationResponses(reservations)})
}

// ValidateBoardingRequest is the HTTP request body for boarding
// validation.
type ValidateBoardingRequest struct {
	Code string `json:"code"`
}

// ValidateBoarding handles POST /v1/reservations/:id/validate
func (h *ReservationHandler) ValidateBoarding(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ValidateBoardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	reservation, err := h.engine.ValidateBoarding(c.Request.Context(), user, c.Param("id"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReservationResponse(reservation))
}

// CancelReservation handles POST /v1/reservations/:id/cancel
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reservation, err := h.engine.Cancel(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReservationResponse(reservation))
}

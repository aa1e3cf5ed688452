package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// SubmitReviewRequest is the HTTP request body for submitting a review.
type SubmitReviewRequest struct {
	ReservationID string `json:"reservation_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// ReviewResponse is the HTTP representation of a review.
type ReviewResponse struct {
	ID            string `json:"id"`
	ReservationID string `json:"reservation_id"`
	RaterID       string `json:"rater_id"`
	DriverID      string `json:"driver_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:            review.ID,
		ReservationID: review.ReservationID,
		RaterID:       review.RaterID,
		DriverID:      review.DriverID,
		Rating:        review.Rating,
		Comment:       review.Comment,
		CreatedAt:     review.CreatedAt.Format(time.RFC3339),
	}
}

// SubmitReview handles POST /v1/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ReservationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reservation_id is required"})
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), user, service.SubmitReviewRequest{
		ReservationID: req.ReservationID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// GetReservationReview handles GET /v1/reservations/:id/review
func (h *ReviewHandler) GetReservationReview(c *gin.Context) {
	review, err := h.reviewService.GetByReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReviewResponse(review))
}

// ListDriverReviews handles GET /v1/drivers/:id/reviews
func (h *ReviewHandler) ListDriverReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewResponse(review))
	}
	respondJSON(c, http.StatusOK, gin.H{"reviews": out})
}

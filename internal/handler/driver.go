package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// DriverHandler handles HTTP requests for driver profiles.
type DriverHandler struct {
	profileService *service.DriverProfileService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(profileService *service.DriverProfileService) *DriverHandler {
	return &DriverHandler{profileService: profileService}
}

// SubmitProfileRequest is the HTTP request body for submitting driver
// credentials.
type SubmitProfileRequest struct {
	LicenseNumber string `json:"license_number"`
	VehicleBrand  string `json:"vehicle_brand"`
	VehicleModel  string `json:"vehicle_model"`
	VehicleColor  string `json:"vehicle_color"`
	LicensePlate  string `json:"license_plate"`
	DefaultSeats  int    `json:"default_seats"`
}

// DriverProfileResponse is the HTTP representation of a driver profile.
type DriverProfileResponse struct {
	UserID        string  `json:"user_id"`
	LicenseNumber string  `json:"license_number"`
	VehicleBrand  string  `json:"vehicle_brand"`
	VehicleModel  string  `json:"vehicle_model"`
	VehicleColor  string  `json:"vehicle_color"`
	LicensePlate  string  `json:"license_plate"`
	DefaultSeats  int     `json:"default_seats"`
	Verified      bool    `json:"verified"`
	RatingCount   int     `json:"rating_count"`
	RatingAvg     float64 `json:"rating_avg"`
}

func toProfileResponse(profile *domain.DriverProfile) DriverProfileResponse {
	return DriverProfileResponse{
		UserID:        profile.UserID,
		LicenseNumber: profile.LicenseNumber,
		VehicleBrand:  profile.Vehicle.Brand,
		VehicleModel:  profile.Vehicle.Model,
		VehicleColor:  profile.Vehicle.Color,
		LicensePlate:  profile.Vehicle.LicensePlate,
		DefaultSeats:  profile.DefaultSeats,
		Verified:      profile.Verified,
		RatingCount:   profile.RatingCount,
		RatingAvg:     profile.RatingAvg,
	}
}

// SubmitProfile handles PUT /v1/drivers/me/profile
func (h *DriverHandler) SubmitProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	profile, err := h.profileService.Submit(c.Request.Context(), user, service.SubmitProfileRequest{
		LicenseNumber: req.LicenseNumber,
		Vehicle: domain.Vehicle{
			Brand:        req.VehicleBrand,
			Model:        req.VehicleModel,
			Color:        req.VehicleColor,
			LicensePlate: req.LicensePlate,
		},
		DefaultSeats: req.DefaultSeats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toProfileResponse(profile))
}

// GetProfile handles GET /v1/drivers/:id/profile
func (h *DriverHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toProfileResponse(profile))
}

// GetRating handles GET /v1/drivers/:id/rating
func (h *DriverHandler) GetRating(c *gin.Context) {
	count, avg, err := h.profileService.Rating(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"driver_id":    c.Param("id"),
		"rating_count": count,
		"rating_avg":   avg,
	})
}

// VerifyDriver handles POST /v1/admin/drivers/:id/verify
func (h *DriverHandler) VerifyDriver(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Verify(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toProfileResponse(profile))
}

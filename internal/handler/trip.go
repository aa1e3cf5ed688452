package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// TripHandler handles HTTP requests for the trip catalog.
type TripHandler struct {
	tripService *service.TripCatalogService
	engine      *service.ReservationEngine
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripCatalogService, engine *service.ReservationEngine) *TripHandler {
	return &TripHandler{tripService: tripService, engine: engine}
}

// PublishTripRequest is the HTTP request body for publishing a trip.
type PublishTripRequest struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	PricePerSeat  float64 `json:"price_per_seat"`
	Seats         int     `json:"seats"`
	Description   string  `json:"description"`

	LuggageAllowed bool `json:"luggage_allowed"`
	PetsAllowed    bool `json:"pets_allowed"`
	SmokingAllowed bool `json:"smoking_allowed"`
	MusicAllowed   bool `json:"music_allowed"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID             string  `json:"id"`
	DriverID       string  `json:"driver_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	PricePerSeat   float64 `json:"price_per_seat"`
	Currency       string  `json:"currency"`
	Seats          int     `json:"seats"`
	SeatsAvailable int     `json:"seats_available"`
	Status         string  `json:"status"`
	Description    string  `json:"description,omitempty"`

	VehicleBrand string `json:"vehicle_brand"`
	VehicleModel string `json:"vehicle_model"`
	VehicleColor string `json:"vehicle_color"`
	LicensePlate string `json:"license_plate"`

	LuggageAllowed bool `json:"luggage_allowed"`
	PetsAllowed    bool `json:"pets_allowed"`
	SmokingAllowed bool `json:"smoking_allowed"`
	MusicAllowed   bool `json:"music_allowed"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:             trip.ID,
		DriverID:       trip.DriverID,
		Origin:         trip.Origin,
		Destination:    trip.Destination,
		DepartureTime:  trip.DepartureTime.Format(time.RFC3339),
		PricePerSeat:   trip.PricePerSeat,
		Currency:       trip.Currency,
		Seats:          trip.Seats,
		SeatsAvailable: trip.SeatsAvailable,
		Status:         string(trip.Status),
		Description:    trip.Description,
		VehicleBrand:   trip.VehicleBrand,
		VehicleModel:   trip.VehicleModel,
		VehicleColor:   trip.VehicleColor,
		LicensePlate:   trip.LicensePlate,
		LuggageAllowed: trip.LuggageAllowed,
		PetsAllowed:    trip.PetsAllowed,
		SmokingAllowed: trip.SmokingAllowed,
		MusicAllowed:   trip.MusicAllowed,
	}
}

func toTripResponses(trips []*domain.Trip) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, toTripResponse(trip))
	}
	return out
}

// PublishTrip handles POST /v1/trips
func (h *TripHandler) PublishTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req PublishTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "departure_time must be RFC 3339"})
		return
	}

	trip, err := h.tripService.Publish(c.Request.Context(), user, service.PublishTripRequest{
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  departure,
		PricePerSeat:   req.PricePerSeat,
		Seats:          req.Seats,
		Description:    req.Description,
		LuggageAllowed: req.LuggageAllowed,
		PetsAllowed:    req.PetsAllowed,
		SmokingAllowed: req.SmokingAllowed,
		MusicAllowed:   req.MusicAllowed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// SearchTrips handles GET /v1/trips
func (h *TripHandler) SearchTrips(c *gin.Context) {
	trips, err := h.tripService.Search(c.Request.Context(), c.Query("origin"), c.Query("destination"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"trips": toTripResponses(trips)})
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	trip, err := h.tripService.Cancel(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	trip, err := h.tripService.Complete(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListTripReservations handles GET /v1/trips/:id/reservations
func (h *TripHandler) ListTripReservations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reservations, err := h.engine.ListByTrip(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"reservations": toReservationResponses(reservations)})
}

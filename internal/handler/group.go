package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// GroupHandler handles HTTP requests for travel groups.
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroupRequest is the HTTP request body for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// GroupResponse is the HTTP representation of a travel group.
type GroupResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toGroupResponse(group *domain.TravelGroup) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		OwnerID:     group.OwnerID,
		Name:        group.Name,
		Origin:      group.Origin,
		Destination: group.Destination,
		CreatedAt:   group.CreatedAt.Format(time.RFC3339),
	}
}

// CreateGroup handles POST /v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), user, service.CreateGroupRequest{
		Name:        req.Name,
		Origin:      req.Origin,
		Destination: req.Destination,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toGroupResponse(group))
}

// JoinGroup handles POST /v1/groups/:id/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.groupService.Join(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "joined"})
}

// GetGroup handles GET /v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toGroupResponse(group))
}

// ListGroups handles GET /v1/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, toGroupResponse(group))
	}
	respondJSON(c, http.StatusOK, gin.H{"groups": out})
}

// ListGroupMembers handles GET /v1/groups/:id/members
func (h *GroupHandler) ListGroupMembers(c *gin.Context) {
	members, err := h.groupService.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, gin.H{
			"group_id":  m.GroupID,
			"user_id":   m.UserID,
			"joined_at": m.JoinedAt.Format(time.RFC3339),
		})
	}
	respondJSON(c, http.StatusOK, gin.H{"members": out})
}

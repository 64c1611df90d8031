package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/dto"
	apierrors "github.com/rsawada/project-management-api/internal/errors"
	"github.com/rsawada/project-management-api/internal/middleware"
	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/services"
	"github.com/rsawada/project-management-api/internal/utils"
)

// MembershipHandler exposes project membership endpoints. Rows are addressed
// by the (project, user) pair.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// CreateMembership adds a user to a project. Staff only.
func (h *MembershipHandler) CreateMembership(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateMembershipRequest struct {
		ProjectID uint64             `json:"project_id" binding:"required"`
		UserID    uint64             `json:"user_id" binding:"required"`
		Role      models.ProjectRole `json:"role"`
	}

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.CreateMembership(actor, services.CreateMembershipInput{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMembershipDTO(*member))
}

// ListMemberships lists membership rows, optionally filtered by project.
func (h *MembershipHandler) ListMemberships(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var projectID *uint64
	if s := c.Query("project_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		projectID = &id
	}

	params := utils.GetPaginationParams(c)

	memberships, total, err := h.membershipService.ListMemberships(actor, projectID, params.Page, params.Limit)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	dtos := make([]dto.MembershipDTO, len(memberships))
	for i, membership := range memberships {
		dtos[i] = dto.ToMembershipDTO(membership)
	}

	c.JSON(http.StatusOK, gin.H{
		"memberships": dtos,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetMembership returns a single membership row.
func (h *MembershipHandler) GetMembership(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, userID, ok := parseMembershipParams(c)
	if !ok {
		return
	}

	member, err := h.membershipService.GetMembership(actor, projectID, userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipDTO(*member))
}

// UpdateMembership changes a member's role.
func (h *MembershipHandler) UpdateMembership(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, userID, ok := parseMembershipParams(c)
	if !ok {
		return
	}

	type UpdateMembershipRequest struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}

	var req UpdateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.UpdateMembership(actor, projectID, userID, req.Role)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipDTO(*member))
}

// DeleteMembership removes a member from a project.
func (h *MembershipHandler) DeleteMembership(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, userID, ok := parseMembershipParams(c)
	if !ok {
		return
	}

	if err := h.membershipService.DeleteMembership(actor, projectID, userID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func parseMembershipParams(c *gin.Context) (projectID, userID uint64, ok bool) {
	projectID, err := strconv.ParseUint(c.Param("project_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return 0, 0, false
	}
	userID, err = strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return 0, 0, false
	}
	return projectID, userID, true
}

func respondMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

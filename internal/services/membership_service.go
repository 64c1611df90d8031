package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/permissions"
	"github.com/rsawada/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrAlreadyMember      = errors.New("user is already a member of this project")
	ErrInvalidRole        = errors.New("invalid project role")
)

// MembershipService manages project membership rows.
type MembershipService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *MembershipService {
	return &MembershipService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateMembershipInput represents parameters to add a user to a project.
type CreateMembershipInput struct {
	ProjectID uint64
	UserID    uint64
	Role      models.ProjectRole
}

// CreateMembership adds a user to a project. Staff only.
func (s *MembershipService) CreateMembership(actor *models.User, input CreateMembershipInput) (*models.ProjectMember, error) {
	if !permissions.CanAccessMembership(actor, permissions.ActionCreate, nil) {
		return nil, ErrPermissionDenied
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.projectRepo.FindMember(input.ProjectID, input.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidProjectRole(role) {
		return nil, ErrInvalidRole
	}

	member := &models.ProjectMember{
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// GetMembership returns a single membership row.
func (s *MembershipService) GetMembership(actor *models.User, projectID, userID uint64) (*models.ProjectMember, error) {
	if !permissions.CanAccessMembership(actor, permissions.ActionRead, nil) {
		return nil, ErrPermissionDenied
	}

	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	return member, nil
}

// ListMemberships lists membership rows, optionally scoped to a project.
func (s *MembershipService) ListMemberships(actor *models.User, projectID *uint64, page, pageSize int) ([]models.ProjectMember, int64, error) {
	if !permissions.CanAccessMembership(actor, permissions.ActionRead, nil) {
		return nil, 0, ErrPermissionDenied
	}

	memberships, total, err := s.projectRepo.ListMemberships(projectID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list memberships: %w", err)
	}

	return memberships, total, nil
}

// UpdateMembership changes a member's role. Staff or the project's owner.
func (s *MembershipService) UpdateMembership(actor *models.User, projectID, userID uint64, role models.ProjectRole) (*models.ProjectMember, error) {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	if !permissions.CanAccessMembership(actor, permissions.ActionUpdate, &member.Project) {
		return nil, ErrPermissionDenied
	}

	if !models.ValidProjectRole(role) {
		return nil, ErrInvalidRole
	}

	member.Role = role
	if err := s.projectRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	return member, nil
}

// DeleteMembership removes a member from a project. Staff or the project's
// owner.
func (s *MembershipService) DeleteMembership(actor *models.User, projectID, userID uint64) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	if !permissions.CanAccessMembership(actor, permissions.ActionDelete, &member.Project) {
		return ErrPermissionDenied
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

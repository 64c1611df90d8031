package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/permissions"
	"github.com/rsawada/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrProjectNotFound      = errors.New("project not found")
	ErrInvalidProjectName   = errors.New("project name cannot be empty")
	ErrInvalidProjectStatus = errors.New("invalid project status")
)

// ProjectService provides business logic for project operations. Every
// mutation is gated by the permissions engine before it reaches the
// repository.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
}

// CreateProject creates a project owned by the actor. The owner membership
// row is written in the same transaction so owner ⊆ members always holds.
func (s *ProjectService) CreateProject(actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if !permissions.CanAccessProject(actor, permissions.ActionCreate, nil) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}
	if !models.ValidProjectStatus(status) {
		return nil, ErrInvalidProjectStatus
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		OwnerID:     actor.ID,
	}

	owner := &models.ProjectMember{
		UserID:   actor.ID,
		Role:     models.RoleOwner,
		JoinedAt: time.Now(),
	}

	if err := s.projectRepo.CreateWithOwner(project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project the actor is allowed to read.
func (s *ProjectService) GetProject(actor *models.User, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !permissions.CanAccessProject(actor, permissions.ActionRead, project) {
		return nil, ErrPermissionDenied
	}

	return project, nil
}

// ListProjects returns projects readable by the actor, optionally filtered
// by status.
func (s *ProjectService) ListProjects(actor *models.User, status *models.ProjectStatus, page, pageSize int) ([]models.Project, int64, error) {
	if status != nil && !models.ValidProjectStatus(*status) {
		return nil, 0, ErrInvalidProjectStatus
	}

	filter := repository.ProjectFilter{
		Status:   status,
		MemberID: &actor.ID,
		Page:     page,
		PageSize: pageSize,
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// UpdateProjectInput represents parameters to update a project. Nil fields
// are left unchanged; the owner is immutable.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
}

// UpdateProject updates a project's mutable fields.
func (s *ProjectService) UpdateProject(actor *models.User, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !permissions.CanAccessProject(actor, permissions.ActionUpdate, project) {
		return nil, ErrPermissionDenied
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidProjectStatus(*input.Status) {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project together with its tasks, comments and
// memberships.
func (s *ProjectService) DeleteProject(actor *models.User, projectID uint64) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if !permissions.CanAccessProject(actor, permissions.ActionDelete, project) {
		return ErrPermissionDenied
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

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
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskProjectRequired = errors.New("project is required for creating a task")
	ErrTaskTitleRequired   = errors.New("title is required")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrInvalidTaskAssignee = errors.New("assignee does not exist")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	AssigneeID  *uint64
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// CreateTask creates a task on a project. The project must be specified and
// the actor must be staff or that project's owner.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if input.ProjectID == 0 {
		return nil, ErrTaskProjectRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !permissions.CanAccessTask(actor, permissions.ActionCreate, project) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityLow
	}
	if !models.ValidTaskPriority(priority) {
		return nil, ErrInvalidTaskPriority
	}

	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidTaskAssignee
			}
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task with related data. Reads are open to any
// authenticated user.
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	if !permissions.CanAccessTask(actor, permissions.ActionRead, nil) {
		return nil, ErrPermissionDenied
	}

	task, err := s.taskRepo.FindByID(taskID, "Project", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	Page       int
	PageSize   int
}

// ListTasks returns tasks matching the provided filters
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	if !permissions.CanAccessTask(actor, permissions.ActionRead, nil) {
		return nil, 0, ErrPermissionDenied
	}

	if input.Status != nil && !models.ValidTaskStatus(*input.Status) {
		return nil, 0, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !models.ValidTaskPriority(*input.Priority) {
		return nil, 0, ErrInvalidTaskPriority
	}

	filter := repository.TaskFilter{
		ProjectID:  input.ProjectID,
		Status:     input.Status,
		Priority:   input.Priority,
		AssigneeID: input.AssigneeID,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged; the project binding is fixed at creation.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	AssigneeID    *uint64
	ClearAssignee bool
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
}

// UpdateTask updates a task's mutable fields.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !permissions.CanAccessTask(actor, permissions.ActionUpdate, &task.Project) {
		return nil, ErrPermissionDenied
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidTaskAssignee
			}
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task and its comments.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID, "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !permissions.CanAccessTask(actor, permissions.ActionDelete, &task.Project) {
		return ErrPermissionDenied
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

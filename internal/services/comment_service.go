package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/permissions"
	"github.com/rsawada/project-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound        = errors.New("comment not found")
	ErrCommentContentRequired = errors.New("content is required")
)

// CommentService handles comment business logic
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// CreateCommentInput represents input for creating a comment
type CreateCommentInput struct {
	TaskID  uint64
	Content string
}

// CreateComment adds a comment to a task. The actor must belong to the
// task's project, and the stored author is always the actor, regardless of
// anything the caller supplied.
func (s *CommentService) CreateComment(actor *models.User, input CreateCommentInput) (*models.Comment, error) {
	task, err := s.taskRepo.FindByID(input.TaskID, "Project", "Project.Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !permissions.CanAccessComment(actor, permissions.ActionCreate, &task.Project) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrCommentContentRequired
	}

	comment := &models.Comment{
		TaskID:   task.ID,
		AuthorID: actor.ID,
		Content:  input.Content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// GetComment returns a comment by ID.
func (s *CommentService) GetComment(actor *models.User, commentID uint64) (*models.Comment, error) {
	if !permissions.CanAccessComment(actor, permissions.ActionRead, nil) {
		return nil, ErrPermissionDenied
	}

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

// ListComments lists comments on a task, oldest first.
func (s *CommentService) ListComments(actor *models.User, taskID uint64, page, pageSize int) ([]models.Comment, int64, error) {
	if !permissions.CanAccessComment(actor, permissions.ActionRead, nil) {
		return nil, 0, ErrPermissionDenied
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, fmt.Errorf("failed to find task: %w", err)
	}

	comments, total, err := s.commentRepo.ListByTask(taskID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, total, nil
}

// UpdateComment edits a comment's content.
func (s *CommentService) UpdateComment(actor *models.User, commentID uint64, content string) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	if !permissions.CanAccessComment(actor, permissions.ActionUpdate, &comment.Task.Project) {
		return nil, ErrPermissionDenied
	}

	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentContentRequired
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(actor *models.User, commentID uint64) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}

	if !permissions.CanAccessComment(actor, permissions.ActionDelete, &comment.Task.Project) {
		return ErrPermissionDenied
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

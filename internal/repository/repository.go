package repository

import (
	"time"

	"github.com/rsawada/project-management-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns users with pagination
	List(page, pageSize int) ([]models.User, int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and the owner's membership row
	// within a single transaction.
	CreateWithOwner(project *models.Project, owner *models.ProjectMember) error

	// FindByID finds a project by ID with its members preloaded
	FindByID(id uint64) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project together with its tasks, comments and members
	Delete(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// UpdateMember updates a membership row
	UpdateMember(member *models.ProjectMember) error

	// ListMemberships lists membership rows, optionally scoped to a project
	ListMemberships(projectID *uint64, page, pageSize int) ([]models.ProjectMember, int64, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status   *models.ProjectStatus
	MemberID *uint64
	Page     int
	PageSize int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task together with its comments
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	Page       int
	PageSize   int
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID with its task and project preloaded
	FindByID(id uint64) (*models.Comment, error)

	// ListByTask lists comments on a task, oldest first
	ListByTask(taskID uint64, page, pageSize int) ([]models.Comment, int64, error)

	// Update updates a comment
	Update(comment *models.Comment) error

	// Delete soft deletes a comment
	Delete(id uint64) error
}

// OTPRepository defines the interface for one-time password data access.
// Rows are append-only; issuance creates, verification reads the latest.
type OTPRepository interface {
	// Create persists a new OTP row
	Create(otp *models.OTP) error

	// FindLatestByUserID returns the most recently created OTP for a user,
	// ties broken by highest id
	FindLatestByUserID(userID uint64) (*models.OTP, error)

	// Delete removes an OTP row by id
	Delete(id uint64) error

	// PurgeExpired hard-deletes rows that expired before the cutoff and
	// returns how many were removed
	PurgeExpired(cutoff time.Time) (int64, error)
}

// Package permissions holds the authorization decisions for every protected
// resource kind. Each function is a pure predicate over an already-loaded
// actor and target; callers resolve entities (with owner, members and project
// relations populated) before asking for a decision.
package permissions

import "github.com/rsawada/project-management-api/internal/models"

// Action is a requested operation on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CanAccessProject decides project-level access.
//
// Read requires the actor to be the owner or a member. Create is staff-only;
// update and delete are allowed for staff or the owner.
func CanAccessProject(actor *models.User, action Action, project *models.Project) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionRead:
		if project == nil {
			return false
		}
		return project.OwnerID == actor.ID || project.HasMember(actor.ID)
	case ActionCreate:
		return actor.IsStaff
	case ActionUpdate, ActionDelete:
		if project == nil {
			return false
		}
		return actor.IsStaff || project.OwnerID == actor.ID
	}
	return false
}

// CanAccessTask decides task-level access.
//
// Any authenticated user may read. Create requires the target project to be
// present and the actor to be staff or that project's owner. Update and
// delete require staff or the task's project owner. The task's Project
// relation must be loaded for object-level checks.
func CanAccessTask(actor *models.User, action Action, project *models.Project) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionRead:
		return true
	case ActionCreate, ActionUpdate, ActionDelete:
		if project == nil {
			return false
		}
		return actor.IsStaff || project.OwnerID == actor.ID
	}
	return false
}

// CanAccessComment decides comment-level access.
//
// Any authenticated user may read. Every mutation requires the actor to
// belong to the parent task's project, as owner or member; authorship and
// staff status are irrelevant here, membership is the only thing checked.
func CanAccessComment(actor *models.User, action Action, project *models.Project) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionRead:
		return true
	case ActionCreate, ActionUpdate, ActionDelete:
		if project == nil {
			return false
		}
		return project.OwnerID == actor.ID || project.HasMember(actor.ID)
	}
	return false
}

// CanAccessMembership decides membership-level access.
//
// Reads collapse to allow-all for authenticated actors. Create is staff-only;
// update and delete additionally admit the membership's project owner.
func CanAccessMembership(actor *models.User, action Action, project *models.Project) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionRead:
		return true
	case ActionCreate:
		return actor.IsStaff
	case ActionUpdate, ActionDelete:
		if project == nil {
			return false
		}
		return actor.IsStaff || project.OwnerID == actor.ID
	}
	return false
}

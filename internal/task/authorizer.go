package task

import (
	"slices"
	"time"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Field names an editable task attribute.
type Field string

const (
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "dueDate"
	FieldAssignedTo  Field = "assignedTo"
	FieldEffort      Field = "effort"
)

// permittedFields is the role policy table. Fields absent for a role are
// dropped from an edit without error.
var permittedFields = map[auth.Role][]Field{
	auth.RoleManager:  {FieldDescription, FieldStatus, FieldPriority, FieldDueDate, FieldAssignedTo, FieldEffort},
	auth.RoleEmployee: {FieldStatus, FieldAssignedTo, FieldEffort},
}

func PermittedFields(role auth.Role) []Field {
	return slices.Clone(permittedFields[role])
}

// EditRequest is a partial update. Nil or empty fields are left alone.
type EditRequest struct {
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Effort      *float64   `json:"effort,omitempty"`
}

func (r *EditRequest) assignee() string {
	if r.AssignedTo == nil {
		return ""
	}
	return *r.AssignedTo
}

// Validate rejects enum values outside the known sets.
func (r *EditRequest) Validate() error {
	if r.Status != nil && *r.Status != "" && !r.Status.Valid() {
		return cerr.NewError(cerr.InvalidArgument, "invalid status", nil)
	}
	if r.Priority != nil && *r.Priority != "" && !r.Priority.Valid() {
		return cerr.NewError(cerr.InvalidArgument, "invalid priority", nil)
	}
	return nil
}

// Applied records what an authorized edit actually changed.
type Applied struct {
	Fields       []Field
	PrevAssignee string
	NewAssignee  string
}

func (a *Applied) AssigneeChanged() bool {
	return a.PrevAssignee != a.NewAssignee
}

func (a *Applied) Has(f Field) bool {
	return slices.Contains(a.Fields, f)
}

// Authorize checks that actor may edit t and applies the permitted part of
// req to t in place.
func Authorize(actor auth.Actor, t *Task, req *EditRequest, now time.Time) (*Applied, error) {
	requested := req.assignee()
	if !canEdit(actor, t) {
		return nil, cerr.NewError(cerr.PermissionDenied, "only manager or assignee can edit task", nil)
	}
	if requested != "" && requested == t.AssignedTo {
		return nil, cerr.NewError(cerr.AlreadyExists, "task already assigned to this user", nil)
	}

	applied := &Applied{PrevAssignee: t.AssignedTo, NewAssignee: t.AssignedTo}
	for _, f := range permittedFields[actor.Role] {
		if applyField(actor, t, req, f, now) {
			applied.Fields = append(applied.Fields, f)
		}
	}
	applied.NewAssignee = t.AssignedTo
	return applied, nil
}

// canEdit admits managers, the assignee, and anyone on an unassigned task,
// which is how the unassigned pool gets claimed.
func canEdit(actor auth.Actor, t *Task) bool {
	if actor.IsManager() || t.AssignedTo == "" {
		return true
	}
	return t.AssignedTo == actor.UserID
}

func applyField(actor auth.Actor, t *Task, req *EditRequest, f Field, now time.Time) bool {
	switch f {
	case FieldDescription:
		if req.Description == nil || *req.Description == "" {
			return false
		}
		t.Description = *req.Description
	case FieldStatus:
		if req.Status == nil || *req.Status == "" {
			return false
		}
		// re-sending done keeps the original completion time
		if *req.Status == StatusDone && (t.Status != StatusDone || t.DateCompleted == nil) {
			completed := now
			t.DateCompleted = &completed
		}
		t.Status = *req.Status
	case FieldPriority:
		if req.Priority == nil || *req.Priority == "" {
			return false
		}
		t.Priority = *req.Priority
	case FieldDueDate:
		if req.DueDate == nil {
			return false
		}
		due := *req.DueDate
		t.DueDate = &due
	case FieldAssignedTo:
		requested := req.assignee()
		if requested == "" {
			return false
		}
		if !actor.IsManager() && requested != actor.UserID {
			return false
		}
		t.AssignedTo = requested
	case FieldEffort:
		if req.Effort == nil {
			return false
		}
		t.Effort = *req.Effort
	default:
		return false
	}
	return true
}

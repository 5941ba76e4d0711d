package task

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is the authoritative owner of the assignment and project relations.
// AssignedTo is empty when the task sits in the unassigned pool.
type Task struct {
	ID            string     `yaml:"id" bson:"_id" json:"id"`
	Name          string     `yaml:"name" bson:"name" json:"name"`
	Description   string     `yaml:"description" bson:"description" json:"description"`
	Status        Status     `yaml:"status" bson:"status" json:"status"`
	Priority      Priority   `yaml:"priority" bson:"priority" json:"priority"`
	DueDate       *time.Time `yaml:"due_date,omitempty" bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	DateCompleted *time.Time `yaml:"date_completed,omitempty" bson:"dateCompleted,omitempty" json:"dateCompleted,omitempty"`
	Effort        float64    `yaml:"effort" bson:"effort" json:"effort"`
	AssignedTo    string     `yaml:"assigned_to,omitempty" bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	InProject     string     `yaml:"in_project" bson:"inProject" json:"inProject"`
	CreatedBy     string     `yaml:"created_by" bson:"createdBy" json:"createdBy"`
	IsDeleted     bool       `yaml:"is_deleted" bson:"isDeleted" json:"isDeleted"`
	CreatedAt     time.Time  `yaml:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `yaml:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// Snapshot returns a value copy that later edits to t cannot reach.
func (t *Task) Snapshot() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.DateCompleted != nil {
		d := *t.DateCompleted
		c.DateCompleted = &d
	}
	return &c
}

// AssigneeRef is the populated form of Task.AssignedTo.
type AssigneeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// View is a task with its assignee resolved for API responses.
type View struct {
	*Task
	Assignee *AssigneeRef `json:"assignee,omitempty"`
}

package task

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Filter is the structured predicate over tasks. Every set condition must
// hold. The zero value matches every live (non-tombstoned) task.
type Filter struct {
	IncludeDeleted bool
	AssignedTo     string
	// Unassigned restricts to tasks with no assignee. Combined with
	// AssignedTo it matches nothing.
	Unassigned bool
	Status     Status
	Priority   Priority
	ProjectID  string
}

func (f Filter) Match(t *Task) bool {
	if !f.IncludeDeleted && t.IsDeleted {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Unassigned && t.AssignedTo != "" {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.ProjectID != "" && t.InProject != f.ProjectID {
		return false
	}
	return true
}

// Query holds the loosely-typed list parameters as they arrive.
type Query struct {
	Page     int
	Limit    int
	Assignee string
	Status   string
	Priority string
}

// ParseQuery reads list parameters. Missing or malformed page/limit values
// fall back to the defaults instead of failing.
func ParseQuery(v url.Values) Query {
	return Query{
		Page:     positiveOr(v.Get("page"), defaultPage),
		Limit:    positiveOr(v.Get("limit"), defaultLimit),
		Assignee: strings.TrimSpace(v.Get("assignee")),
		Status:   strings.TrimSpace(v.Get("status")),
		Priority: strings.TrimSpace(v.Get("priority")),
	}
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Normalize applies defaults to a Query built by hand.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	return q
}

// Window converts 1-based page numbers into a skip/limit window.
func (q Query) Window() Page {
	return Page{Skip: (q.Page - 1) * q.Limit, Limit: q.Limit}
}

// FilterBuilder turns a Query into a Filter for a given actor.
type FilterBuilder struct {
	users user.Repository
}

func NewFilterBuilder(users user.Repository) *FilterBuilder {
	return &FilterBuilder{users: users}
}

func (b *FilterBuilder) Build(ctx context.Context, actor auth.Actor, q Query) (Filter, error) {
	var f Filter
	if q.Assignee != "" {
		assignee, err := b.users.FindByName(ctx, q.Assignee)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				return Filter{}, cerr.NewError(cerr.NotFound, "assignee not found", err)
			}
			return Filter{}, err
		}
		f.AssignedTo = assignee.ID
	}
	f.Status = Status(q.Status)
	f.Priority = Priority(q.Priority)
	// non-managers only see the unassigned pool
	if !actor.IsManager() {
		f.Unassigned = true
	}
	return f, nil
}

// TotalPages is ceil(count / limit).
func TotalPages(count, limit int) int {
	if limit < 1 {
		return 0
	}
	return (count + limit - 1) / limit
}

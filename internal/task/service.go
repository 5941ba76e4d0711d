package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// ChangeNotifier is told about every persisted edit with the task as it was
// before and after.
type ChangeNotifier interface {
	NotifyTaskChanged(ctx context.Context, before, after *Task) error
}

type CreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Effort      float64    `json:"effort"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	InProject   string     `json:"inProject"`
}

func (r *CreateRequest) empty() bool {
	return r.Name == "" && r.Description == "" && r.Status == "" && r.Priority == "" &&
		r.DueDate == nil && r.Effort == 0 && r.AssignedTo == "" && r.InProject == ""
}

// ListResult is one page of a task listing.
type ListResult struct {
	Tasks      []*View `json:"tasks"`
	TotalPages int     `json:"totalPages"`
	Count      int     `json:"count"`
}

// Service is the task lifecycle engine.
type Service struct {
	repo     Repository
	users    user.Repository
	sync     *Synchronizer
	filters  *FilterBuilder
	notifier ChangeNotifier
	bus      *eventbus.Bus
	now      func() time.Time
}

func NewService(repo Repository, users user.Repository, projects project.Repository, notifier ChangeNotifier, bus *eventbus.Bus) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sync:     NewSynchronizer(users, projects),
		filters:  NewFilterBuilder(users),
		notifier: notifier,
		bus:      bus,
		now:      time.Now,
	}
}

// Create persists a new task and then indexes it on its assignee and
// project. The task stays persisted if indexing fails.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req *CreateRequest) (*Task, error) {
	if req == nil || req.empty() {
		return nil, cerr.NewError(cerr.InvalidArgument, "bad request", nil)
	}
	if req.Status == "" {
		req.Status = StatusTodo
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !req.Status.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid status", nil)
	}
	if !req.Priority.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid priority", nil)
	}

	now := s.now()
	t := &Task{
		ID:          ulid.Make().String(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Effort:      req.Effort,
		AssignedTo:  req.AssignedTo,
		InProject:   req.InProject,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == StatusDone {
		completed := now
		t.DateCompleted = &completed
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	if t.AssignedTo != "" {
		if err := s.sync.AttachAssignee(ctx, t.ID, t.AssignedTo); err != nil {
			return nil, err
		}
	}
	if err := s.sync.IndexInProject(ctx, t.ID, t.InProject); err != nil {
		return nil, err
	}
	s.publish(eventbus.TaskCreated, t)
	return t, nil
}

// Edit applies the part of req the actor is allowed to change, then
// synchronizes the assignment indexes and emits change notifications.
func (s *Service) Edit(ctx context.Context, actor auth.Actor, id string, req *EditRequest) (*View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := t.Snapshot()

	now := s.now()
	applied, err := Authorize(actor, t, req, now)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt = now
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	if applied.AssigneeChanged() {
		if err := s.sync.Reassign(ctx, t.ID, applied.PrevAssignee, applied.NewAssignee); err != nil {
			return nil, err
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyTaskChanged(ctx, before, t); err != nil {
			return nil, err
		}
	}
	s.publish(eventbus.TaskUpdated, t)
	return s.view(ctx, t, true)
}

// Get returns the task by id, tombstoned or not.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, t, false)
}

// Delete tombstones the task. Indexes are left untouched.
func (s *Service) Delete(ctx context.Context, id string) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsDeleted {
		t.IsDeleted = true
		t.UpdatedAt = s.now()
		if err := s.repo.Save(ctx, t); err != nil {
			return nil, err
		}
	}
	s.publish(eventbus.TaskDeleted, t)
	return t, nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor, q Query) (*ListResult, error) {
	q = q.Normalize()
	f, err := s.filters.Build(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.Find(ctx, f, q.Window())
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, tasks, false)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Tasks:      views,
		TotalPages: TotalPages(count, q.Limit),
		Count:      count,
	}, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*View, error) {
	tasks, err := s.repo.Find(ctx, Filter{ProjectID: projectID}, Page{})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tasks, true)
}

// Summaries resolves task ids to summaries, skipping ids that no longer
// resolve.
func (s *Service) Summaries(ctx context.Context, ids []string) ([]user.TaskSummary, error) {
	summaries := make([]user.TaskSummary, 0, len(ids))
	for _, id := range ids {
		t, err := s.repo.Get(ctx, id)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, user.TaskSummary{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Status:      string(t.Status),
		})
	}
	return summaries, nil
}

func (s *Service) view(ctx context.Context, t *Task, withRole bool) (*View, error) {
	views, err := s.views(ctx, []*Task{t}, withRole)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views populates assignees. A dangling assignee id yields a view without
// an assignee rather than an error.
func (s *Service) views(ctx context.Context, tasks []*Task, withRole bool) ([]*View, error) {
	refs := make(map[string]*AssigneeRef)
	views := make([]*View, 0, len(tasks))
	for _, t := range tasks {
		v := &View{Task: t}
		if t.AssignedTo != "" {
			ref, ok := refs[t.AssignedTo]
			if !ok {
				u, err := s.users.Get(ctx, t.AssignedTo)
				switch {
				case err == nil:
					ref = &AssigneeRef{ID: u.ID, Name: u.Name}
					if withRole {
						ref.Role = string(u.Role)
					}
				case cerr.IsCode(err, cerr.NotFound):
				default:
					return nil, err
				}
				refs[t.AssignedTo] = ref
			}
			v.Assignee = ref
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) publish(eventType eventbus.EventType, t *Task) {
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	s.bus.PublishNew(eventType, t.ID, string(payload), map[string]string{
		"project_id": t.InProject,
	})
}

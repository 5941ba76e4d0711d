// Package reconcile repairs the denormalized relation indexes from the task
// records, which own the assignment and project relations.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/conc/pool"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
)

const defaultConcurrency = 8

type Kind string

const (
	KindUser    Kind = "users"
	KindProject Kind = "projects"
)

// Change is one record whose index differed from the task side.
type Change struct {
	Kind   Kind
	ID     string
	Before []string
	After  []string
}

func (c *Change) Name() string {
	return string(c.Kind) + "/" + c.ID
}

// Diff renders the index change as a unified diff.
func (c *Change) Diff() (string, error) {
	before, err := yaml.Marshal(c.Before)
	if err != nil {
		return "", err
	}
	after, err := yaml.Marshal(c.After)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + c.Name(),
		ToFile:   "b/" + c.Name(),
		Context:  3,
	})
}

type Report struct {
	DryRun  bool
	Changes []*Change
}

// Diff concatenates the per-record diffs in a stable order.
func (r *Report) Diff() (string, error) {
	var b strings.Builder
	for _, c := range r.Changes {
		d, err := c.Diff()
		if err != nil {
			return "", fmt.Errorf("failed to diff %s: %w", c.Name(), err)
		}
		b.WriteString(d)
	}
	return b.String(), nil
}

type Options struct {
	DryRun      bool
	Concurrency int
}

type Reconciler struct {
	tasks    task.Repository
	users    user.Repository
	projects project.Repository
}

func New(tasks task.Repository, users user.Repository, projects project.Repository) *Reconciler {
	return &Reconciler{tasks: tasks, users: users, projects: projects}
}

// Run rebuilds User.ResponsibleFor in both directions and appends missing
// ids to Project.IncludeTasks. Project indexes are never shrunk.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Report, error) {
	tasks, err := r.tasks.Find(ctx, task.Filter{IncludeDeleted: true}, task.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	// oldest first so appended ids follow creation order
	slices.Reverse(tasks)

	byAssignee := map[string][]string{}
	byProject := map[string][]string{}
	for _, t := range tasks {
		if t.AssignedTo != "" {
			byAssignee[t.AssignedTo] = append(byAssignee[t.AssignedTo], t.ID)
		}
		if t.InProject != "" {
			byProject[t.InProject] = append(byProject[t.InProject], t.ID)
		}
	}

	users, err := r.users.List(ctx, user.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	projects, err := r.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	warnDangling(ctx, users, projects, byAssignee, byProject)

	n := opts.Concurrency
	if n <= 0 {
		n = defaultConcurrency
	}
	p := pool.NewWithResults[*Change]().WithContext(ctx).WithMaxGoroutines(n)
	for _, u := range users {
		u := u
		p.Go(func(ctx context.Context) (*Change, error) {
			return r.reconcileUser(ctx, u, byAssignee[u.ID], opts.DryRun)
		})
	}
	for _, pr := range projects {
		pr := pr
		p.Go(func(ctx context.Context) (*Change, error) {
			return r.reconcileProject(ctx, pr, byProject[pr.ID], opts.DryRun)
		})
	}
	results, err := p.Wait()

	report := &Report{DryRun: opts.DryRun}
	for _, c := range results {
		if c != nil {
			report.Changes = append(report.Changes, c)
		}
	}
	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Name() < report.Changes[j].Name()
	})
	return report, err
}

func (r *Reconciler) reconcileUser(ctx context.Context, u *user.User, owned []string, dryRun bool) (*Change, error) {
	after := rebuild(u.ResponsibleFor, owned)
	if slices.Equal(u.ResponsibleFor, after) {
		return nil, nil
	}
	c := &Change{Kind: KindUser, ID: u.ID, Before: slices.Clone(u.ResponsibleFor), After: after}
	if dryRun {
		return c, nil
	}
	u.ResponsibleFor = after
	if err := r.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}
	slog.InfoContext(ctx, "reconciled user", "user_id", u.ID, "before", len(c.Before), "after", len(after))
	return c, nil
}

func (r *Reconciler) reconcileProject(ctx context.Context, p *project.Project, indexed []string, dryRun bool) (*Change, error) {
	before := slices.Clone(p.IncludeTasks)
	changed := false
	for _, id := range indexed {
		if p.AddTask(id) {
			changed = true
		}
	}
	if !changed {
		return nil, nil
	}
	c := &Change{Kind: KindProject, ID: p.ID, Before: before, After: slices.Clone(p.IncludeTasks)}
	if dryRun {
		return c, nil
	}
	if err := r.projects.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}
	slog.InfoContext(ctx, "reconciled project", "project_id", p.ID, "added", len(c.After)-len(before))
	return c, nil
}

// rebuild keeps the ids of current that are still owned, in their current
// order and without duplicates, then appends the owned ids that were missing.
func rebuild(current, owned []string) []string {
	out := make([]string, 0, len(owned))
	for _, id := range current {
		if slices.Contains(owned, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	for _, id := range owned {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func warnDangling(ctx context.Context, users []*user.User, projects []*project.Project, byAssignee, byProject map[string][]string) {
	known := map[string]bool{}
	for _, u := range users {
		known[u.ID] = true
	}
	for id, tasks := range byAssignee {
		if !known[id] {
			slog.WarnContext(ctx, "tasks assigned to unknown user", "user_id", id, "tasks", tasks)
		}
	}
	clear(known)
	for _, p := range projects {
		known[p.ID] = true
	}
	for id, tasks := range byProject {
		if !known[id] {
			slog.WarnContext(ctx, "tasks in unknown project", "project_id", id, "tasks", tasks)
		}
	}
}

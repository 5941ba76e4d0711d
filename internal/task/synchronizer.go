package task

import (
	"context"

	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Synchronizer keeps User.ResponsibleFor and Project.IncludeTasks in step
// with the task side of the relation. Writes are not atomic; a failure
// part-way leaves the indexes for the reconciler to repair.
type Synchronizer struct {
	users    user.Repository
	projects project.Repository
}

func NewSynchronizer(users user.Repository, projects project.Repository) *Synchronizer {
	return &Synchronizer{users: users, projects: projects}
}

// Reassign moves taskID from prev's responsibilities to next's. The removal
// is persisted before the addition.
func (s *Synchronizer) Reassign(ctx context.Context, taskID, prev, next string) error {
	if prev == next {
		return nil
	}
	if prev != "" {
		u, err := s.users.Get(ctx, prev)
		if err != nil {
			return relabelNotFound(err, "previous assignee not found")
		}
		if u.RemoveResponsibility(taskID) {
			if err := s.users.Save(ctx, u); err != nil {
				return err
			}
		}
	}
	if next != "" {
		return s.AttachAssignee(ctx, taskID, next)
	}
	return nil
}

// AttachAssignee adds taskID to the user's responsibilities.
func (s *Synchronizer) AttachAssignee(ctx context.Context, taskID, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return relabelNotFound(err, "assignee not found")
	}
	if !u.AddResponsibility(taskID) {
		return nil
	}
	return s.users.Save(ctx, u)
}

// IndexInProject adds taskID to the project's task index.
func (s *Synchronizer) IndexInProject(ctx context.Context, taskID, projectID string) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return relabelNotFound(err, "project not found")
	}
	if !p.AddTask(taskID) {
		return nil
	}
	return s.projects.Save(ctx, p)
}

func relabelNotFound(err error, msg string) error {
	if cerr.IsCode(err, cerr.NotFound) {
		return cerr.NewError(cerr.NotFound, msg, err)
	}
	return err
}

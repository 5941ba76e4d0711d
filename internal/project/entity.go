package project

import (
	"slices"
	"time"
)

type Project struct {
	ID          string `yaml:"id" bson:"_id" json:"id"`
	Name        string `yaml:"name" bson:"name" json:"name"`
	Description string `yaml:"description" bson:"description" json:"description"`
	// IncludeTasks is append-only and derived from Task.InProject.
	IncludeTasks   []string  `yaml:"include_tasks" bson:"includeTasks" json:"includeTasks"`
	IncludeMembers []string  `yaml:"include_members" bson:"includeMembers" json:"includeMembers"`
	CreatedBy      string    `yaml:"created_by" bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time `yaml:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `yaml:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// AddTask appends taskID unless it is already indexed.
func (p *Project) AddTask(taskID string) bool {
	if slices.Contains(p.IncludeTasks, taskID) {
		return false
	}
	p.IncludeTasks = append(p.IncludeTasks, taskID)
	return true
}

func (p *Project) HasMember(userID string) bool {
	return slices.Contains(p.IncludeMembers, userID)
}

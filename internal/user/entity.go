package user

import (
	"slices"
	"time"

	"github.com/kazz187/taskboard/internal/auth"
)

type User struct {
	ID       string    `yaml:"id" bson:"_id" json:"id"`
	Name     string    `yaml:"name" bson:"name" json:"name"`
	Email    string    `yaml:"email" bson:"email" json:"email"`
	Password string    `yaml:"password" bson:"password" json:"-"`
	Role     auth.Role `yaml:"role" bson:"role" json:"role"`
	// ResponsibleFor mirrors Task.AssignedTo and is maintained by the task
	// synchronizer; it is never authoritative.
	ResponsibleFor []string  `yaml:"responsible_for" bson:"responsibleFor" json:"responsibleFor"`
	MemberOf       []string  `yaml:"member_of" bson:"memberOf" json:"memberOf"`
	IsVerified     bool      `yaml:"is_verified" bson:"isVerified" json:"isVerified"`
	ConfirmToken   string    `yaml:"confirm_token,omitempty" bson:"confirmToken,omitempty" json:"-"`
	IsDeleted      bool      `yaml:"is_deleted" bson:"isDeleted" json:"isDeleted"`
	CreatedAt      time.Time `yaml:"created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `yaml:"updated_at" bson:"updatedAt" json:"updatedAt"`
}

// AddResponsibility adds taskID to the responsibility set. It reports
// whether the set changed.
func (u *User) AddResponsibility(taskID string) bool {
	if slices.Contains(u.ResponsibleFor, taskID) {
		return false
	}
	u.ResponsibleFor = append(u.ResponsibleFor, taskID)
	return true
}

// RemoveResponsibility drops every occurrence of taskID. It reports whether
// the set changed.
func (u *User) RemoveResponsibility(taskID string) bool {
	n := len(u.ResponsibleFor)
	u.ResponsibleFor = slices.DeleteFunc(u.ResponsibleFor, func(id string) bool { return id == taskID })
	return len(u.ResponsibleFor) != n
}

// TaskSummary is the slice of a task shown when a user's responsibilities
// are expanded.
type TaskSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

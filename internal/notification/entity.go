package notification

import "time"

// Notification is created only as a side effect of task edits. Read is the
// one field that changes afterwards.
type Notification struct {
	ID        string    `yaml:"id" bson:"_id" json:"id"`
	Title     string    `yaml:"title" bson:"title" json:"title"`
	Message   string    `yaml:"message" bson:"message" json:"message"`
	ForUser   string    `yaml:"for_user" bson:"forUser" json:"forUser"`
	Read      bool      `yaml:"read" bson:"read" json:"read"`
	CreatedAt time.Time `yaml:"created_at" bson:"createdAt" json:"createdAt"`
}

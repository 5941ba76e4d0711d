package repositoryimpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kazz187/taskboard/internal/task"
)

func TestToBSON(t *testing.T) {
	tests := []struct {
		name   string
		filter task.Filter
		want   bson.M
	}{
		{
			name:   "default excludes tombstones",
			filter: task.Filter{},
			want:   bson.M{"$and": bson.A{bson.M{"isDeleted": false}}},
		},
		{
			name:   "include deleted",
			filter: task.Filter{IncludeDeleted: true},
			want:   bson.M{},
		},
		{
			name:   "employee listing",
			filter: task.Filter{Unassigned: true, Status: task.StatusReview},
			want: bson.M{"$and": bson.A{
				bson.M{"isDeleted": false},
				bson.M{"assignedTo": bson.M{"$in": bson.A{nil, ""}}},
				bson.M{"status": task.StatusReview},
			}},
		},
		{
			name:   "assignee priority project",
			filter: task.Filter{AssignedTo: "u1", Priority: task.PriorityUrgent, ProjectID: "p1"},
			want: bson.M{"$and": bson.A{
				bson.M{"isDeleted": false},
				bson.M{"assignedTo": "u1"},
				bson.M{"priority": task.PriorityUrgent},
				bson.M{"inProject": "p1"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toBSON(tt.filter))
		})
	}
}

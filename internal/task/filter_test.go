package task

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want Query
	}{
		{raw: "", want: Query{Page: 1, Limit: 10}},
		{raw: "page=2&limit=25", want: Query{Page: 2, Limit: 25}},
		{raw: "page=abc&limit=-4", want: Query{Page: 1, Limit: 10}},
		{raw: "assignee=%20Ann%20&status=todo&priority=high", want: Query{Page: 1, Limit: 10, Assignee: "Ann", Status: "todo", Priority: "high"}},
	}
	for _, tt := range tests {
		v, err := url.ParseQuery(tt.raw)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, ParseQuery(v), tt.raw)
	}
}

func TestQueryWindow(t *testing.T) {
	assert.Equal(t, Page{Skip: 10, Limit: 10}, Query{Page: 2, Limit: 10}.Window())
	assert.Equal(t, Page{Skip: 0, Limit: 10}, Query{}.Normalize().Window())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
}

func TestFilterMatch(t *testing.T) {
	live := &Task{ID: "1", Status: StatusTodo, Priority: PriorityLow, InProject: "p"}
	assigned := &Task{ID: "2", AssignedTo: "u", Status: StatusTodo, Priority: PriorityLow, InProject: "p"}
	deleted := &Task{ID: "3", IsDeleted: true}

	assert.True(t, Filter{}.Match(live))
	assert.False(t, Filter{}.Match(deleted))
	assert.True(t, Filter{IncludeDeleted: true}.Match(deleted))
	assert.False(t, Filter{Unassigned: true}.Match(assigned))
	assert.True(t, Filter{AssignedTo: "u"}.Match(assigned))
	assert.False(t, Filter{AssignedTo: "u", Unassigned: true}.Match(assigned))
	assert.False(t, Filter{Status: StatusDone}.Match(live))
	assert.False(t, Filter{Priority: PriorityHigh}.Match(live))
	assert.False(t, Filter{ProjectID: "other"}.Match(live))
}

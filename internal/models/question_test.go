package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusHighlighted.Valid())
	assert.True(t, StatusAnswered.Valid())
	assert.False(t, Status("deleted").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusCanTransitionTo(t *testing.T) {
	testCases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"highlight pending", StatusPending, StatusHighlighted, true},
		{"unhighlight", StatusHighlighted, StatusPending, true},
		{"resolve pending", StatusPending, StatusAnswered, true},
		{"resolve highlighted", StatusHighlighted, StatusAnswered, true},
		{"reopen", StatusAnswered, StatusPending, true},
		{"answered cannot be highlighted directly", StatusAnswered, StatusHighlighted, false},
		{"no self transition pending", StatusPending, StatusPending, false},
		{"no self transition answered", StatusAnswered, StatusAnswered, false},
		{"unknown target", StatusPending, Status("archived"), false},
		{"unknown source", Status("archived"), StatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

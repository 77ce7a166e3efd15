package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

	allowed := map[Status]map[Status]bool{
		StatusScheduled: {StatusConfirmed: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
		StatusConfirmed: {StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_TerminalStatesHaveNoEdges(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.Reschedulable())
		assert.False(t, s.CanTransitionTo(StatusScheduled))
	}
	assert.False(t, StatusScheduled.IsTerminal())
	assert.True(t, StatusConfirmed.Reschedulable())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusNoShow.Valid())
	assert.False(t, Status("pending").Valid())
	assert.False(t, Status("").Valid())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", User{LastName: "Lovelace"}.FullName())
}

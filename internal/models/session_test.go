package models_test

import (
	"testing"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSessionStatus_Apply_AllowedEdges(t *testing.T) {
	tests := []struct {
		name   string
		from   models.SessionStatus
		action models.SessionAction
		want   models.SessionStatus
	}{
		{"requested accept", models.StatusRequested, models.ActionAccept, models.StatusAccepted},
		{"requested reject", models.StatusRequested, models.ActionReject, models.StatusRejected},
		{"requested cancel", models.StatusRequested, models.ActionCancel, models.StatusCancelled},
		{"accepted schedule", models.StatusAccepted, models.ActionSchedule, models.StatusScheduled},
		{"accepted cancel", models.StatusAccepted, models.ActionCancel, models.StatusCancelled},
		{"scheduled complete", models.StatusScheduled, models.ActionComplete, models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.from.Apply(tt.action)
			assert.True(t, ok)
			assert.Equal(t, tt.want, next)
			assert.True(t, tt.from.CanApply(tt.action))
		})
	}
}

func TestSessionStatus_Apply_DisallowedEdges(t *testing.T) {
	tests := []struct {
		name   string
		from   models.SessionStatus
		action models.SessionAction
	}{
		{"requested complete", models.StatusRequested, models.ActionComplete},
		{"requested schedule", models.StatusRequested, models.ActionSchedule},
		{"accepted accept", models.StatusAccepted, models.ActionAccept},
		{"accepted complete", models.StatusAccepted, models.ActionComplete},
		{"scheduled cancel", models.StatusScheduled, models.ActionCancel},
		{"scheduled accept", models.StatusScheduled, models.ActionAccept},
		{"completed complete", models.StatusCompleted, models.ActionComplete},
		{"cancelled accept", models.StatusCancelled, models.ActionAccept},
		{"rejected accept", models.StatusRejected, models.ActionAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.from.Apply(tt.action)
			assert.False(t, ok)
			assert.False(t, tt.from.CanApply(tt.action))
		})
	}
}

func TestSessionStatus_TerminalStatusesHaveNoEdges(t *testing.T) {
	terminal := []models.SessionStatus{models.StatusCompleted, models.StatusCancelled, models.StatusRejected}
	actions := []models.SessionAction{
		models.ActionAccept, models.ActionReject, models.ActionSchedule,
		models.ActionComplete, models.ActionCancel,
	}

	for _, status := range terminal {
		assert.True(t, status.IsTerminalStatus())
		for _, action := range actions {
			assert.False(t, status.CanApply(action),
				"terminal status %s must not allow %s", status, action)
		}
	}
}

func TestSessionGroup_GetStatuses(t *testing.T) {
	assert.Equal(t, models.ActiveStatuses, models.SessionGroupActive.GetStatuses())
	assert.Equal(t, models.PastStatuses, models.SessionGroupPast.GetStatuses())
	assert.Nil(t, models.SessionGroup("bogus").GetStatuses())
}

func TestValidAction(t *testing.T) {
	for _, a := range []string{"accept", "reject", "schedule", "complete", "cancel"} {
		assert.True(t, models.ValidAction(a))
	}
	assert.False(t, models.ValidAction("decline"))
	assert.False(t, models.ValidAction(""))
}

func TestStatDeltasFor(t *testing.T) {
	assert.Equal(t, models.StatDeltas{SessionsAccepted: 1}, models.StatDeltasFor(models.StatusAccepted))
	assert.Equal(t,
		models.StatDeltas{SessionsCompleted: 1, StudentsHelped: 1, TotalSessions: 1},
		models.StatDeltasFor(models.StatusCompleted))

	for _, status := range []models.SessionStatus{
		models.StatusRequested, models.StatusScheduled,
		models.StatusCancelled, models.StatusRejected,
	} {
		assert.True(t, models.StatDeltasFor(status).IsZero(), "no deltas for %s", status)
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncidentStatus_Lifecycle(t *testing.T) {
	tests := []struct {
		status   IncidentStatus
		terminal bool
		active   bool
	}{
		{StatusReported, false, false},
		{StatusNoVehicleAvailable, true, false},
		{StatusEnRoute, false, true},
		{StatusArrived, false, true},
		{StatusCompleted, true, false},
		{StatusCancelled, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.active, tt.status.IsActive())
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusReported, StatusEnRoute))
	assert.True(t, CanTransition(StatusEnRoute, StatusCancelled))
	assert.True(t, CanTransition(StatusArrived, StatusCompleted))
	assert.False(t, CanTransition(StatusArrived, StatusCancelled))
	assert.False(t, CanTransition(StatusCompleted, StatusEnRoute))
}

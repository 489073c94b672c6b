package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Urgency(t *testing.T) {
	tests := []struct {
		priority Priority
		want     Urgency
		label    string
	}{
		{0, UrgencyHigh, "🔴 高"},
		{PriorityHigh, UrgencyHigh, "🔴 高"},
		{PriorityMedium, UrgencyMedium, "🟡 中"},
		{PriorityLow, UrgencyLow, "🟢 低"},
		{7, UrgencyLow, "🟢 低"},
	}

	for _, tt := range tests {
		got := tt.priority.Urgency()
		assert.Equal(t, tt.want, got, "priority %d", tt.priority)
		assert.Equal(t, tt.label, got.Label(), "priority %d", tt.priority)
	}
}

func TestPriority_OrDefault(t *testing.T) {
	assert.Equal(t, PriorityMedium, Priority(0).OrDefault())
	assert.Equal(t, PriorityLow, PriorityLow.OrDefault())
	// Out-of-range values are carried as-is.
	assert.Equal(t, Priority(9), Priority(9).OrDefault())
}

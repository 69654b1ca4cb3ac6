package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentSessionVerification(t *testing.T) {
	s := &AgentSession{}
	s.MarkVerified(VerifiedSlot{Court: "Cancha 1", Date: "2025-12-20", TimeRange: "18:00-19:00", Turn: 1})

	assert.False(t, s.WasVerified("Cancha 1", "2025-12-20", "18:00-19:00", 1), "same turn does not count")
	assert.True(t, s.WasVerified("Cancha 1", "2025-12-20", "18:00-19:00", 2))
	assert.False(t, s.WasVerified("Cancha 2", "2025-12-20", "18:00-19:00", 2))

	s.MarkVerified(VerifiedSlot{Court: "Cancha 1", Date: "2025-12-20", TimeRange: "18:00-19:00", Turn: 2})
	assert.Len(t, s.Verified, 1)
	assert.True(t, s.WasVerified("Cancha 1", "2025-12-20", "18:00-19:00", 2), "re-check keeps the first turn")

	s.Forget("Cancha 1", "2025-12-20", "18:00-19:00")
	assert.Empty(t, s.Verified)
}

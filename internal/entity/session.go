package entity

// VerifiedSlot is a slot the booking agent saw reported as available.
type VerifiedSlot struct {
	Court     string `json:"cancha"`
	Date      string `json:"fecha"`
	TimeRange string `json:"hora"`
	Turn      int    `json:"turno"`
}

// AgentSession is the per-identity state the agent keeps between turns.
type AgentSession struct {
	Turn     int            `json:"turno"`
	Verified []VerifiedSlot `json:"verificados"`
}

// WasVerified reports whether the slot was verified in a turn before current.
func (s *AgentSession) WasVerified(court, date, timeRange string, current int) bool {
	for _, v := range s.Verified {
		if v.Court == court && v.Date == date && v.TimeRange == timeRange && v.Turn < current {
			return true
		}
	}
	return false
}

// MarkVerified records a verification. A slot verified again keeps the turn
// it was first seen in, so re-checking right before booking still passes.
func (s *AgentSession) MarkVerified(slot VerifiedSlot) {
	for _, v := range s.Verified {
		if v.Court == slot.Court && v.Date == slot.Date && v.TimeRange == slot.TimeRange {
			return
		}
	}
	s.Verified = append(s.Verified, slot)
}

// Forget drops a slot once it has been booked.
func (s *AgentSession) Forget(court, date, timeRange string) {
	kept := s.Verified[:0]
	for _, v := range s.Verified {
		if v.Court == court && v.Date == date && v.TimeRange == timeRange {
			continue
		}
		kept = append(kept, v)
	}
	s.Verified = kept
}

package domain

// Priority ranks urgency: 1 is the most urgent, 3 the least.
// Values outside 1..3 are carried as-is.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3

	DefaultPriority = PriorityMedium
)

// Urgency is the visual classification of a priority.
type Urgency int

const (
	UrgencyHigh Urgency = iota
	UrgencyMedium
	UrgencyLow
)

// PriorityPtr returns a pointer to p.
func PriorityPtr(p Priority) *Priority {
	return &p
}

// OrDefault returns p, or DefaultPriority when p is zero.
func (p Priority) OrDefault() Priority {
	if p == 0 {
		return DefaultPriority
	}
	return p
}

// Urgency classifies the priority: 1 or less is high, 2 is medium, 3 and up is low.
func (p Priority) Urgency() Urgency {
	switch {
	case p <= PriorityHigh:
		return UrgencyHigh
	case p == PriorityMedium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Label returns the short display label of the urgency.
func (u Urgency) Label() string {
	switch u {
	case UrgencyHigh:
		return "🔴 高"
	case UrgencyMedium:
		return "🟡 中"
	default:
		return "🟢 低"
	}
}

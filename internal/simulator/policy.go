package simulator

import (
	"fmt"
	"strings"
)

const (
	SetpointF     = 72.0 // occupied target for both policies
	IdleSetpointF = 82.0 // sentient target for empty rooms
)

// Policy selects how a room's target temperature follows occupancy.
type Policy int

const (
	// PolicyLegacy holds a fixed setpoint regardless of occupancy.
	PolicyLegacy Policy = iota
	// PolicySentient relaxes the setpoint of empty rooms.
	PolicySentient
)

// PolicyFor maps the isSentient flag onto a Policy.
func PolicyFor(isSentient bool) Policy {
	if isSentient {
		return PolicySentient
	}
	return PolicyLegacy
}

// ParsePolicy accepts "legacy" or "sentient" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy":
		return PolicyLegacy, nil
	case "sentient":
		return PolicySentient, nil
	default:
		return PolicyLegacy, fmt.Errorf("unknown policy %q", s)
	}
}

// Target returns the setpoint for a room with the given occupancy.
func (p Policy) Target(occupied bool) float64 {
	if p == PolicySentient && !occupied {
		return IdleSetpointF
	}
	return SetpointF
}

// IsSentient reports whether p is the occupancy-aware policy.
func (p Policy) IsSentient() bool {
	return p == PolicySentient
}

func (p Policy) String() string {
	if p == PolicySentient {
		return "sentient"
	}
	return "legacy"
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

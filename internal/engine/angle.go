package engine

import (
	"fmt"
	"strings"
)

// AngleMode selects how trigonometric arguments are interpreted.
type AngleMode int

const (
	Degrees AngleMode = iota
	Radians
)

func (m AngleMode) String() string {
	if m == Radians {
		return "RAD"
	}
	return "DEG"
}

// Toggle returns the other mode.
func (m AngleMode) Toggle() AngleMode {
	if m == Radians {
		return Degrees
	}
	return Radians
}

// ParseAngleMode accepts the display labels as well as the spelled-out names,
// case-insensitively. The empty string selects Degrees.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	}
	return Degrees, fmt.Errorf("%w: %q", ErrAngleMode, s)
}

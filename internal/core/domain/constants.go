package domain

import (
	"fmt"
	"strings"
)

// Side is one of the two outcomes a market tracks shares and reserves for.
type Side int

const (
	SideYes Side = iota + 1
	SideNo
)

// Outcome is the final result of a market. Its Yes/No values share the
// numbering of Side so that a resolved outcome selects the winning side.
type Outcome int

const (
	OutcomeUnresolved Outcome = iota
	OutcomeYes
	OutcomeNo
)

func (s Side) IsValid() bool {
	return s == SideYes || s == SideNo
}

func (s Side) String() string {
	switch s {
	case SideYes:
		return "yes"
	case SideNo:
		return "no"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide returns the side matching the given case-insensitive name.
func ParseSide(str string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "yes":
		return SideYes, nil
	case "no":
		return SideNo, nil
	default:
		return 0, ErrInvalidSide
	}
}

func (o Outcome) IsValid() bool {
	return o >= OutcomeUnresolved && o <= OutcomeNo
}

// WinningSide returns the side holding winning shares for the outcome.
// An unresolved outcome has no winning side.
func (o Outcome) WinningSide() (Side, bool) {
	switch o {
	case OutcomeYes:
		return SideYes, true
	case OutcomeNo:
		return SideNo, true
	default:
		return 0, false
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeYes:
		return "yes"
	case OutcomeNo:
		return "no"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome returns the outcome matching the given case-insensitive name.
func ParseOutcome(str string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "unresolved":
		return OutcomeUnresolved, nil
	case "yes":
		return OutcomeYes, nil
	case "no":
		return OutcomeNo, nil
	default:
		return 0, ErrInvalidOutcome
	}
}

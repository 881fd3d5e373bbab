// Package types contains common types used across the application
package types

import (
	"fmt"
	"strings"
)

// Sex identifies the sex division of a competition record.
type Sex uint8

const (
	Male Sex = iota
	Female
)

// String returns the canonical label for the sex division.
func (s Sex) String() string {
	if s == Female {
		return "F"
	}
	return "M"
}

// ParseSex maps a label to a Sex. Accepts "M"/"F" and long forms.
func ParseSex(s string) (Sex, error) {
	switch s {
	case "M", "m", "Male", "male":
		return Male, nil
	case "F", "f", "Female", "female":
		return Female, nil
	}
	return Male, fmt.Errorf("unknown sex: %q", s)
}

// Equipment identifies the equipment category of a record.
type Equipment uint8

const (
	Raw Equipment = iota
	Wraps
	SinglePly
	MultiPly
)

// AllEquipment lists every category in canonical order.
func AllEquipment() []Equipment {
	return []Equipment{Raw, Wraps, SinglePly, MultiPly}
}

// String returns the canonical label for the equipment category.
func (e Equipment) String() string {
	switch e {
	case Wraps:
		return "Wraps"
	case SinglePly:
		return "Single-ply"
	case MultiPly:
		return "Multi-ply"
	default:
		return "Raw"
	}
}

// ParseEquipment maps a label to an Equipment category.
func ParseEquipment(s string) (Equipment, error) {
	switch s {
	case "Raw", "raw":
		return Raw, nil
	case "Wraps", "wraps":
		return Wraps, nil
	case "Single-ply", "single-ply", "SinglePly":
		return SinglePly, nil
	case "Multi-ply", "multi-ply", "MultiPly":
		return MultiPly, nil
	}
	return Raw, fmt.Errorf("unknown equipment: %q", s)
}

// LiftType identifies which lift a score or event refers to.
type LiftType uint8

const (
	Squat LiftType = iota
	Bench
	Deadlift
	Total
)

// String returns the canonical label for the lift.
func (l LiftType) String() string {
	switch l {
	case Squat:
		return "squat"
	case Bench:
		return "bench"
	case Deadlift:
		return "deadlift"
	default:
		return "total"
	}
}

// MarshalJSON encodes the lift as its canonical label.
func (l LiftType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON decodes a canonical lift label.
func (l *LiftType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseLiftType(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLiftType maps a label to a LiftType.
func ParseLiftType(s string) (LiftType, error) {
	switch s {
	case "squat":
		return Squat, nil
	case "bench":
		return Bench, nil
	case "deadlift":
		return Deadlift, nil
	case "total":
		return Total, nil
	}
	return Total, fmt.Errorf("unknown lift type: %q", s)
}

// TimePeriod selects the date window a filter applies.
type TimePeriod uint8

const (
	AllTime TimePeriod = iota
	CalendarYear
	Last12Months
	Last5Years
	Last10Years
)

// String returns the canonical label for the period selector.
func (p TimePeriod) String() string {
	switch p {
	case CalendarYear:
		return "calendar-year"
	case Last12Months:
		return "last-12-months"
	case Last5Years:
		return "last-5-years"
	case Last10Years:
		return "last-10-years"
	default:
		return "all-time"
	}
}

// ParseTimePeriod maps a label to a TimePeriod.
func ParseTimePeriod(s string) (TimePeriod, error) {
	switch s {
	case "", "all-time":
		return AllTime, nil
	case "calendar-year":
		return CalendarYear, nil
	case "last-12-months":
		return Last12Months, nil
	case "last-5-years":
		return Last5Years, nil
	case "last-10-years":
		return Last10Years, nil
	}
	return AllTime, fmt.Errorf("unknown time period: %q", s)
}

// Tier buckets a score into a strength level.
type Tier uint8

const (
	Beginner Tier = iota
	Novice
	Intermediate
	Advanced
	Elite
	WorldClass
)

// String returns the display label for the tier.
func (t Tier) String() string {
	switch t {
	case Novice:
		return "Novice"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	case Elite:
		return "Elite"
	case WorldClass:
		return "World Class"
	default:
		return "Beginner"
	}
}

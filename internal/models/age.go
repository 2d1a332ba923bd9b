package models

import (
	"fmt"
	"strings"
	"time"
)

type Age int

const (
	AgeOlder Age = iota
	AgePastWeek
	AgePastDay
	AgePastHour
)

func (a Age) String() string {
	switch a {
	case AgePastHour:
		return "Past Hour"
	case AgePastDay:
		return "Past Day"
	case AgePastWeek:
		return "Past Week"
	default:
		return "Older"
	}
}

func ParseAge(s string) (Age, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "past hour":
		return AgePastHour, nil
	case "past day":
		return AgePastDay, nil
	case "past week":
		return AgePastWeek, nil
	case "older":
		return AgeOlder, nil
	default:
		return AgeOlder, fmt.Errorf("unknown age category %q", s)
	}
}

// AgeAt buckets the time elapsed between t and now.
func AgeAt(t, now time.Time) Age {
	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Hour:
		return AgePastHour
	case elapsed < 24*time.Hour:
		return AgePastDay
	case elapsed < 7*24*time.Hour:
		return AgePastWeek
	default:
		return AgeOlder
	}
}

// Package gametime parses and validates the H:MM:SS finish times used
// for race submissions and leaderboard ordering.
package gametime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/errors"
)

// Time is a validated finish time. The canonical string form is
// H:MM:SS with the hour always present; the canonical seconds value is
// used only for ordering, never displayed.
type Time struct {
	Hours   int
	Minutes int
	Seconds int
}

// Parse validates a finish time string in "MM:SS" or "H:MM:SS" format.
// Hours must be 0-24, minutes and seconds 0-59. The empty string is a
// missing value, not a parse error, and must be handled by the caller.
func Parse(raw string) (Time, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Time{}, errors.Validationf("time %q is not in H:MM:SS or MM:SS format", raw)
	}

	var t Time
	var err error
	t.Seconds, err = strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Time{}, errors.Validationf("time %q has a non-numeric seconds field", raw)
	}
	t.Minutes, err = strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return Time{}, errors.Validationf("time %q has a non-numeric minutes field", raw)
	}
	if len(parts) == 3 {
		t.Hours, err = strconv.Atoi(parts[0])
		if err != nil {
			return Time{}, errors.Validationf("time %q has a non-numeric hours field", raw)
		}
	}

	if t.Hours < 0 || t.Hours > 24 || t.Minutes < 0 || t.Minutes > 59 || t.Seconds < 0 || t.Seconds > 59 {
		return Time{}, errors.Validationf("time %q is out of range", raw)
	}
	return t, nil
}

// TotalSeconds returns the canonical seconds value used for ordering.
func (t Time) TotalSeconds() int {
	return 3600*t.Hours + 60*t.Minutes + t.Seconds
}

// String returns the canonical H:MM:SS form, zero-hour included.
func (t Time) String() string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// Normalize returns the canonical H:MM:SS form of a raw time string,
// prefixing a zero hour to short MM:SS inputs. The input must already
// have been validated with Parse; unparseable input is returned as-is.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	if len(strings.Split(raw, ":")) == 2 {
		return "0:" + raw
	}
	return raw
}

// SortSeconds returns the canonical seconds for a stored time string,
// for leaderboard ordering. Empty or malformed strings sort first; the
// DNF sentinel is a valid maximal time and sorts last on its own.
func SortSeconds(raw string) int {
	if raw == "" {
		return 0
	}
	t, err := Parse(raw)
	if err != nil {
		return 0
	}
	return t.TotalSeconds()
}

// IsDNF reports whether a stored time string is the forfeit sentinel.
func IsDNF(raw string) bool {
	return raw == config.DNFTime
}

// PlaceString returns the ordinal label for a 1-based place, e.g.
// 1 -> "1st", 2 -> "2nd", 11 -> "11th", 21 -> "21st". Place 0 means the
// user has no submission and gets the no-placement label.
func PlaceString(place int) string {
	if place <= 0 {
		return "Worst"
	}
	suffix := "th"
	if place%100/10 != 1 {
		switch place % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(place) + suffix
}

package warranties

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// ErrInvalidDateFormat is returned when no supported date pattern matches or
// the parsed components do not form a real calendar date.
var ErrInvalidDateFormat = errors.New("invalid date format")

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeRe  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// NormalizeDate converts YYYY-MM-DD, MM/DD/YYYY, DD/MM/YYYY or a datetime
// string into a calendar date at UTC midnight. The time component of a
// datetime is dropped as written, without zone conversion.
//
// Slashed dates are read as MM/DD/YYYY first; DD/MM/YYYY is used only when the
// US reading is not a real date, so "03/04/2024" is March 4th.
func NormalizeDate(raw string) (types.Date, error) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return types.Date{}, ErrInvalidDateFormat
	case isoDateRe.MatchString(value):
		return parseISO(value)
	case dateTimeRe.MatchString(value):
		return parseISO(dateTimeRe.FindStringSubmatch(value)[1])
	}

	m := slashDateRe.FindStringSubmatch(value)
	if m == nil {
		return types.Date{}, ErrInvalidDateFormat
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if d, ok := calendarDate(year, first, second); ok {
		return d, nil
	}
	if d, ok := calendarDate(year, second, first); ok {
		return d, nil
	}
	return types.Date{}, ErrInvalidDateFormat
}

func parseISO(value string) (types.Date, error) {
	d, err := types.ParseDate(value)
	if err != nil {
		return types.Date{}, ErrInvalidDateFormat
	}
	return d, nil
}

func calendarDate(year, month, day int) (types.Date, bool) {
	if month < 1 || month > 12 || day < 1 {
		return types.Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return types.Date{}, false
	}
	return types.DateOf(t), true
}

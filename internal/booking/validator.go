package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"counseling-booking-api/internal/model"
)

const (
	MinDuration     = 30
	MaxDuration     = 180
	DefaultDuration = 60
)

var clockRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// Candidate is a booking before normalization.
type Candidate struct {
	ServiceType string
	Date        string
	StartTime   string
	EndTime     string
	SessionType string
}

// Draft is a normalized, storable schedule for an appointment.
type Draft struct {
	ServiceType model.ServiceType
	Date        time.Time
	StartTime   string
	EndTime     string
	Duration    int
	SessionType model.SessionType
}

// Validate checks c and returns its normalized form. Past dates are accepted.
// The session type must be one the service is delivered in.
// Without an end time the end is start plus one hour, with the hour wrapped
// modulo 24 and the date left unchanged.
func Validate(c Candidate) (Draft, error) {
	var d Draft

	st := model.ServiceType(strings.TrimSpace(c.ServiceType))
	if !st.Valid() {
		return d, invalid(CodeInvalidServiceType, "serviceType", "invalid service type")
	}
	d.ServiceType = st

	date, err := ParseDate(c.Date)
	if err != nil {
		return d, invalid(CodeInvalidDate, "appointmentDate", "valid date is required")
	}
	d.Date = date

	startMin, err := ParseClock(c.StartTime)
	if err != nil {
		return d, invalid(CodeInvalidTimeFormat, "startTime", "time must be in HH:MM format")
	}

	endSet := strings.TrimSpace(c.EndTime) != ""
	var endMin int
	if endSet {
		endMin, err = ParseClock(c.EndTime)
		if err != nil {
			return d, invalid(CodeInvalidTimeFormat, "endTime", "time must be in HH:MM format")
		}
	}

	sess := model.SessionType(strings.TrimSpace(c.SessionType))
	if sess == "" {
		sess = model.SessionInPerson
	}
	if !sess.Valid() {
		return d, invalid(CodeInvalidSessionType, "sessionType", "invalid session type")
	}
	if !st.Offers(sess) {
		return d, invalid(CodeInvalidSessionType, "sessionType",
			fmt.Sprintf("%s is not offered as %s", st, sess))
	}
	d.SessionType = sess

	d.StartTime = FormatClock(startMin)
	if !endSet {
		h, m := startMin/60, startMin%60
		d.EndTime = FormatClock(((h+1)%24)*60 + m)
		d.Duration = DefaultDuration
		return d, nil
	}

	if endMin <= startMin {
		return d, invalid(CodeEndBeforeOrEqualStart, "endTime", "end time must be after start time")
	}
	dur := endMin - startMin
	if dur < MinDuration || dur > MaxDuration {
		return d, invalid(CodeInvalidDuration, "endTime",
			fmt.Sprintf("duration must be between %d and %d minutes", MinDuration, MaxDuration))
	}
	d.EndTime = FormatClock(endMin)
	d.Duration = dur
	return d, nil
}

// ParseClock parses H:MM or HH:MM into minutes past midnight.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

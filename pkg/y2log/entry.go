// Package y2log parses YaST2 log files into typed entries and filters
// them with composable queries.
package y2log

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used by y2log files. Timestamps are
// naive wall-clock values; the file carries no timezone.
const TimeLayout = "2006-01-02 15:04:05"

// PID identifies the process that wrote an entry. It is a distinct type
// so that process IDs cannot be confused with line numbers or severity
// codes in calling code.
type PID int

// ParsePID decodes a decimal process ID.
func ParsePID(s string) (PID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return PID(n), nil
}

// Location is the origin of a log message in the producing program.
// File is always present; Method and Line are independently optional.
// An empty Method and a zero Line mean absent (y2log line numbers are
// 1-based and recorded methods are never empty).
type Location struct {
	File   string
	Method string
	Line   int
}

func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.File)
	if l.Method != "" {
		b.WriteByte('(')
		b.WriteString(l.Method)
		b.WriteByte(')')
	}
	if l.Line > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(l.Line))
	}
	return b.String()
}

// Entry is one parsed log record. It is a value type; copies are
// independent and equality is structural over all fields.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Hostname  string
	PID       PID
	Component string
	Location  Location
	Message   string
}

// String renders the entry in the canonical single-line display form:
//
//	<datetime> <<code>> <hostname>(<pid>) [<component>] <location> <message>
func (e Entry) String() string {
	return fmt.Sprintf("%s <%d> %s(%d) [%s] %s %s",
		e.Timestamp.Format(TimeLayout),
		e.Level.Code(),
		e.Hostname,
		int(e.PID),
		e.Component,
		e.Location,
		e.Message,
	)
}

package y2log

import "fmt"

// Level is the severity of a log entry. The underlying value is the
// numeric code used in the raw log text (`<0>` through `<5>`).
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelUnknown
)

// LevelFromCode maps a numeric severity code to a Level. Codes outside
// the 0-5 table decode to LevelUnknown rather than failing; the producer
// occasionally emits codes that no released version documents.
func LevelFromCode(code int) Level {
	if code < int(LevelDebug) || code > int(LevelUnknown) {
		return LevelUnknown
	}
	return Level(code)
}

// Code returns the numeric severity code. It is the canonical wire form:
// Entry rendering uses the code, not the name.
func (l Level) Code() int {
	return int(l)
}

// ParseLevel decodes a level name as accepted on the command line.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "unknown":
		return LevelUnknown, nil
	default:
		return LevelUnknown, fmt.Errorf("invalid level %q (expected debug, info, warn, error, fatal or unknown)", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

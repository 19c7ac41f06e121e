package y2log

// Log is an ordered collection of entries from one source. Entry order is
// file order and is preserved by every operation; filtering keeps the
// relative order of surviving entries.
type Log struct {
	entries []Entry
}

// NewLog builds a Log that takes ownership of the given entries.
func NewLog(entries []Entry) Log {
	return Log{entries: entries}
}

// ParseLog parses the complete contents of a y2log file into a Log.
func ParseLog(text string) (Log, error) {
	entries, err := Parse(text)
	if err != nil {
		return Log{}, err
	}
	return Log{entries: entries}, nil
}

// Entries returns the entries in file order. The slice is owned by the
// Log; callers must not modify it.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Query starts a new query bound to this log, with no predicates set.
func (l *Log) Query() *Query {
	return NewQuery(l)
}

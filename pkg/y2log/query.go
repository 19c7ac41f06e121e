package y2log

import "time"

// Query accumulates optional predicates over a source Log. Unset
// predicates contribute no restriction; set predicates must all match for
// an entry to survive. Each With/From/To call overwrites any earlier
// value for the same field and returns the query for chaining. Building
// has no effect until ToLog materializes the result; the source Log is
// never mutated.
//
// A Query belongs to a single builder sequence and is not safe for
// concurrent use. The Log it reads from is.
type Query struct {
	log       *Log
	level     *Level
	pid       *PID
	component *string
	hostname  *string
	from      *time.Time
	to        *time.Time
}

// NewQuery binds a query to a source log with all predicates unset.
func NewQuery(log *Log) *Query {
	return &Query{log: log}
}

// WithLevel restricts the result to entries of exactly the given level.
func (q *Query) WithLevel(level Level) *Query {
	q.level = &level
	return q
}

// WithPID restricts the result to entries written by the given process.
func (q *Query) WithPID(pid PID) *Query {
	q.pid = &pid
	return q
}

// WithComponent restricts the result to entries of the named component.
// The match is exact, not a substring search.
func (q *Query) WithComponent(component string) *Query {
	q.component = &component
	return q
}

// WithHostname restricts the result to entries from the given host.
func (q *Query) WithHostname(hostname string) *Query {
	q.hostname = &hostname
	return q
}

// From sets an inclusive lower bound on entry timestamps.
func (q *Query) From(t time.Time) *Query {
	q.from = &t
	return q
}

// To sets an inclusive upper bound on entry timestamps.
func (q *Query) To(t time.Time) *Query {
	q.to = &t
	return q
}

// Matches reports whether a single entry satisfies every set predicate.
// It is the evaluation function ToLog applies; streaming consumers use it
// to filter entries that are not part of the bound Log.
func (q *Query) Matches(e Entry) bool {
	if q.level != nil && *q.level != e.Level {
		return false
	}
	if q.pid != nil && *q.pid != e.PID {
		return false
	}
	if q.component != nil && *q.component != e.Component {
		return false
	}
	if q.hostname != nil && *q.hostname != e.Hostname {
		return false
	}
	if q.from != nil && e.Timestamp.Before(*q.from) {
		return false
	}
	if q.to != nil && e.Timestamp.After(*q.to) {
		return false
	}
	return true
}

// ToLog evaluates the predicates against every source entry and returns a
// new Log holding the survivors in their original relative order.
func (q *Query) ToLog() Log {
	var entries []Entry
	for _, e := range q.log.entries {
		if q.Matches(e) {
			entries = append(entries, e)
		}
	}
	return Log{entries: entries}
}

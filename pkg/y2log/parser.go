package y2log

import (
	"fmt"
	"strconv"
	"time"
)

// ParseError reports input that does not conform to the y2log grammar.
// The whole parse fails on it; no partial entries are returned.
type ParseError struct {
	// Offset is the byte position at which parsing failed.
	Offset int
	reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse the log at offset %d: %s", e.Offset, e.reason)
}

// Parse decodes the complete contents of a y2log file into its entries,
// in file order. An empty input yields no entries. Any input that does
// not match the grammar fails as a whole with a *ParseError.
func Parse(text string) ([]Entry, error) {
	c := &cursor{input: text}
	var entries []Entry
	for !c.eof() {
		entry, err := parseEntry(c)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// StartsEntry reports whether a physical line begins a new record: one or
// more digits followed by a literal '-', heuristically recognizing the
// leading `YYYY-` of a timestamp. The message of the preceding record
// swallows every line that does not match. A message body line that
// happens to start with digits and a hyphen therefore terminates its
// record early; this quirk is kept for compatibility with the producer's
// other consumers.
func StartsEntry(line string) bool {
	i := 0
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	return i > 0 && i < len(line) && line[i] == '-'
}

// cursor is a position in the input. Each field parser either advances it
// past a typed value or reports a *ParseError at the current offset.
type cursor struct {
	input string
	pos   int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.input)
}

func (c *cursor) peek() byte {
	return c.input[c.pos]
}

func (c *cursor) fail(format string, args ...any) *ParseError {
	return &ParseError{Offset: c.pos, reason: fmt.Sprintf(format, args...)}
}

func (c *cursor) expect(ch byte) error {
	if c.eof() || c.input[c.pos] != ch {
		return c.fail("expected %q", ch)
	}
	c.pos++
	return nil
}

func (c *cursor) takeWhile(pred func(byte) bool) string {
	start := c.pos
	for !c.eof() && pred(c.input[c.pos]) {
		c.pos++
	}
	return c.input[start:c.pos]
}

func (c *cursor) digits() (string, error) {
	s := c.takeWhile(isDigit)
	if s == "" {
		return "", c.fail("expected digits")
	}
	return s, nil
}

func parseEntry(c *cursor) (Entry, error) {
	var entry Entry
	var err error

	if entry.Timestamp, err = parseTimestamp(c); err != nil {
		return Entry{}, err
	}
	if err = c.expect(' '); err != nil {
		return Entry{}, err
	}
	if entry.Level, err = parseLevel(c); err != nil {
		return Entry{}, err
	}
	if err = c.expect(' '); err != nil {
		return Entry{}, err
	}
	entry.Hostname = c.takeWhile(isHostnameByte)
	if entry.PID, err = parsePID(c); err != nil {
		return Entry{}, err
	}
	if err = c.expect(' '); err != nil {
		return Entry{}, err
	}
	if entry.Component, err = parseComponent(c); err != nil {
		return Entry{}, err
	}
	if err = c.expect(' '); err != nil {
		return Entry{}, err
	}
	if entry.Location, err = parseLocation(c); err != nil {
		return Entry{}, err
	}
	if err = c.expect(' '); err != nil {
		return Entry{}, err
	}
	entry.Message = parseMessage(c)
	return entry, nil
}

// parseTimestamp reads the fixed-width `YYYY-MM-DD HH:MM:SS` prefix.
func parseTimestamp(c *cursor) (time.Time, error) {
	if len(c.input)-c.pos < len(TimeLayout) {
		return time.Time{}, c.fail("truncated timestamp")
	}
	raw := c.input[c.pos : c.pos+len(TimeLayout)]
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}, c.fail("malformed timestamp %q", raw)
	}
	c.pos += len(TimeLayout)
	return t, nil
}

// parseLevel reads `<code>`. Non-numeric content between the brackets is
// a hard failure; a numeric code outside the table decodes to Unknown.
func parseLevel(c *cursor) (Level, error) {
	if err := c.expect('<'); err != nil {
		return LevelUnknown, err
	}
	digits, err := c.digits()
	if err != nil {
		return LevelUnknown, err
	}
	if err := c.expect('>'); err != nil {
		return LevelUnknown, err
	}
	code, err := strconv.Atoi(digits)
	if err != nil {
		// Numeric but too large for int; still just an unknown code.
		return LevelUnknown, nil
	}
	return LevelFromCode(code), nil
}

// parsePID reads `(pid)` immediately after the hostname.
func parsePID(c *cursor) (PID, error) {
	if err := c.expect('('); err != nil {
		return 0, err
	}
	digits, err := c.digits()
	if err != nil {
		return 0, err
	}
	if err := c.expect(')'); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, c.fail("pid out of range")
	}
	return PID(n), nil
}

// parseComponent reads `[name]`.
func parseComponent(c *cursor) (string, error) {
	if err := c.expect('['); err != nil {
		return "", err
	}
	name := c.takeWhile(isComponentByte)
	if err := c.expect(']'); err != nil {
		return "", err
	}
	return name, nil
}

// parseLocation reads `file`, optionally followed by `(method)` and
// `:line`. A ':' not followed by digits is left for the caller; the
// grammar then requires the separating space, so stray colons still fail
// the record as a whole.
func parseLocation(c *cursor) (Location, error) {
	loc := Location{File: c.takeWhile(isFileByte)}
	if loc.File == "" {
		return Location{}, c.fail("expected location")
	}
	if !c.eof() && c.peek() == '(' {
		c.pos++
		start := c.pos
		for !c.eof() && c.peek() != ')' {
			c.pos++
		}
		if c.eof() {
			return Location{}, c.fail("unterminated method name")
		}
		loc.Method = c.input[start:c.pos]
		c.pos++
	}
	if c.pos+1 < len(c.input) && c.peek() == ':' && isDigit(c.input[c.pos+1]) {
		c.pos++
		digits, err := c.digits()
		if err != nil {
			return Location{}, err
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Location{}, c.fail("line number out of range")
		}
		loc.Line = n
	}
	return loc, nil
}

// parseMessage consumes the rest of the current physical line plus every
// following line that does not begin a new record. The newline separating
// the message from the next record is consumed but not part of either.
func parseMessage(c *cursor) string {
	start := c.pos
	for {
		for !c.eof() && c.peek() != '\n' {
			c.pos++
		}
		if c.eof() {
			return c.input[start:c.pos]
		}
		if StartsEntry(c.input[c.pos+1:]) {
			msg := c.input[start:c.pos]
			c.pos++
			return msg
		}
		// Continuation line; the newline stays in the message.
		c.pos++
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isAlphanumeric(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || isDigit(b)
}

func isHostnameByte(b byte) bool {
	return isAlphanumeric(b) || b == '.' || b == '-'
}

func isComponentByte(b byte) bool {
	return isAlphanumeric(b) || b == '.' || b == '-' || b == '_' || b == '+' || b == ':'
}

func isFileByte(b byte) bool {
	return isAlphanumeric(b) || b == '.' || b == '/' || b == '_'
}

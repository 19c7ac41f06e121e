package y2log

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(TimeLayout, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

func TestParse(t *testing.T) {
	input := "2022-08-25 14:28:44 <1> localhost.localdomain(12375) [libstorage] SystemCmd.cc(addLine):569 Adding Line 14...\n" +
		"Done\n" +
		"2022-08-25 14:28:44 <0> localhost.localdomain(12375) [libstorage] CmdParted.cc(parse):139 device:/dev/nvme0n1"

	entries, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	want := Entry{
		Timestamp: mustTime(t, "2022-08-25 14:28:44"),
		Level:     LevelInfo,
		Hostname:  "localhost.localdomain",
		PID:       12375,
		Component: "libstorage",
		Location:  Location{File: "SystemCmd.cc", Method: "addLine", Line: 569},
		Message:   "Adding Line 14...\nDone",
	}
	if entries[0] != want {
		t.Errorf("entry 0 = %+v, want %+v", entries[0], want)
	}

	want = Entry{
		Timestamp: mustTime(t, "2022-08-25 14:28:44"),
		Level:     LevelDebug,
		Hostname:  "localhost.localdomain",
		PID:       12375,
		Component: "libstorage",
		Location:  Location{File: "CmdParted.cc", Method: "parse", Line: 139},
		Message:   "device:/dev/nvme0n1",
	}
	if entries[1] != want {
		t.Errorf("entry 1 = %+v, want %+v", entries[1], want)
	}
}

func TestParseMultilineContinuation(t *testing.T) {
	input := "2022-08-25 14:28:44 <1> host(100) [comp] file.cc(m):5 first line\n" +
		"continuation line\n" +
		"2022-08-25 14:28:45 <0> host(100) [comp] file.cc(m):6 next entry"

	entries, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got, want := entries[0].Message, "first line\ncontinuation line"; got != want {
		t.Errorf("entry 0 message = %q, want %q", got, want)
	}
	if got, want := entries[1].Message, "next entry"; got != want {
		t.Errorf("entry 1 message = %q, want %q", got, want)
	}
}

func TestParseEmptyInput(t *testing.T) {
	entries, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestParseSeverityCodes(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Level
		wantErr bool
	}{
		{name: "debug", token: "<0>", want: LevelDebug},
		{name: "fatal", token: "<4>", want: LevelFatal},
		{name: "unknown in table", token: "<5>", want: LevelUnknown},
		{name: "numeric out of table", token: "<9>", want: LevelUnknown},
		{name: "numeric far out of table", token: "<473>", want: LevelUnknown},
		{name: "non-numeric", token: "<x>", wantErr: true},
		{name: "empty", token: "<>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "2022-08-25 14:28:44 " + tt.token + " host(1) [comp] f.cc message"
			entries, err := Parse(input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse() expected error, got entries %v", entries)
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("error %v is not a *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if entries[0].Level != tt.want {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.want)
			}
		})
	}
}

func TestParseLocationVariants(t *testing.T) {
	tests := []struct {
		input string
		want  Location
	}{
		{input: "YaPI", want: Location{File: "YaPI"}},
		{input: "mod.rb(Set)", want: Location{File: "mod.rb", Method: "Set"}},
		{input: "mod.rb:79", want: Location{File: "mod.rb", Line: 79}},
		{input: "mod.rb(Set):79", want: Location{File: "mod.rb", Method: "Set", Line: 79}},
		{input: "y2storage/storage_manager.rb(probe_performed):471", want: Location{
			File: "y2storage/storage_manager.rb", Method: "probe_performed", Line: 471,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := &cursor{input: tt.input}
			got, err := parseLocation(c)
			if err != nil {
				t.Fatalf("parseLocation(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseLocation(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if !c.eof() {
				t.Errorf("parseLocation(%q) left %q unconsumed", tt.input, tt.input[c.pos:])
			}
		})
	}
}

// A message body line that itself starts with digits and a hyphen is taken
// for the start of the next record. The record boundary is a heuristic,
// not a delimiter, so such input fails to parse as a whole.
func TestParseNumericContinuation(t *testing.T) {
	input := "2022-08-25 14:28:44 <1> host(1) [comp] f.cc command output follows\n" +
		"3-way merge failed"

	if _, err := Parse(input); err == nil {
		t.Fatal("expected the digits-hyphen continuation to be mistaken for a record start")
	}
}

// The original consumer folds a file-final newline into the last message.
func TestParseTrailingNewline(t *testing.T) {
	input := "2022-08-25 14:28:44 <1> host(1) [comp] f.cc done\n"

	entries, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := entries[0].Message, "done\n"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "garbage", input: "not a log line at all"},
		{name: "truncated timestamp", input: "2022-08-25 14:2"},
		{name: "missing pid", input: "2022-08-25 14:28:44 <1> host [comp] f.cc msg"},
		{name: "missing component brackets", input: "2022-08-25 14:28:44 <1> host(1) comp f.cc msg"},
		{name: "bad second record", input: "2022-08-25 14:28:44 <1> host(1) [comp] f.cc msg\n2022-08-25 garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got %v", tt.input, entries)
			}
			if entries != nil {
				t.Errorf("Parse(%q) returned partial entries on failure", tt.input)
			}
		})
	}
}

func TestParseOffsetInError(t *testing.T) {
	input := "2022-08-25 14:28:44 <1> host(1) [comp] f.cc ok\n2022-08-25 14:28:45 <x> host(1) [comp] f.cc bad"

	_, err := Parse(input)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Offset <= len("2022-08-25 14:28:44 <1> host(1) [comp] f.cc ok") {
		t.Errorf("offset %d does not point into the second record", perr.Offset)
	}
}

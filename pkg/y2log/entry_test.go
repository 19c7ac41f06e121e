package y2log

import "testing"

func TestLevelCodeRoundTrip(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal, LevelUnknown}
	for _, level := range levels {
		if got := LevelFromCode(level.Code()); got != level {
			t.Errorf("LevelFromCode(%d) = %v, want %v", level.Code(), got, level)
		}
	}

	for _, code := range []int{-1, 6, 9, 1000} {
		if got := LevelFromCode(code); got != LevelUnknown {
			t.Errorf("LevelFromCode(%d) = %v, want LevelUnknown", code, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "warn", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "fatal", want: LevelFatal},
		{input: "unknown", want: LevelUnknown},
		{input: "WARN", wantErr: true},
		{input: "2", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParsePID(t *testing.T) {
	if pid, err := ParsePID("12375"); err != nil || pid != 12375 {
		t.Errorf("ParsePID(\"12375\") = %v, %v", pid, err)
	}
	for _, input := range []string{"", "abc", "12a", "-5", "3.5"} {
		if _, err := ParsePID(input); err == nil {
			t.Errorf("ParsePID(%q) expected error", input)
		}
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{loc: Location{File: "YaPI"}, want: "YaPI"},
		{loc: Location{File: "mod.rb", Method: "Set"}, want: "mod.rb(Set)"},
		{loc: Location{File: "mod.rb", Line: 79}, want: "mod.rb:79"},
		{loc: Location{File: "mod.rb", Method: "Set", Line: 79}, want: "mod.rb(Set):79"},
	}

	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("Location%+v.String() = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

func TestEntryString(t *testing.T) {
	entry := Entry{
		Timestamp: mustTime(t, "2022-08-25 14:28:44"),
		Level:     LevelInfo,
		Hostname:  "localhost.localdomain",
		PID:       12375,
		Component: "libstorage",
		Location:  Location{File: "SystemCmd.cc", Method: "addLine", Line: 569},
		Message:   "Adding Line 14...",
	}

	want := "2022-08-25 14:28:44 <1> localhost.localdomain(12375) [libstorage] SystemCmd.cc(addLine):569 Adding Line 14..."
	if got := entry.String(); got != want {
		t.Errorf("Entry.String() = %q, want %q", got, want)
	}
}

// Rendering uses the severity ordinal, not the level name.
func TestEntryStringUnknownLevel(t *testing.T) {
	entry := Entry{
		Timestamp: mustTime(t, "2022-08-25 14:28:44"),
		Level:     LevelUnknown,
		Hostname:  "host",
		PID:       1,
		Component: "comp",
		Location:  Location{File: "f.cc"},
		Message:   "m",
	}

	want := "2022-08-25 14:28:44 <5> host(1) [comp] f.cc m"
	if got := entry.String(); got != want {
		t.Errorf("Entry.String() = %q, want %q", got, want)
	}
}

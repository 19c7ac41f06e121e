package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `2022-03-23 14:28:01 <1> linux-adm0(3544) [zypp] PluginScript.cc:112 execute open
2022-03-23 14:28:02 <3> linux-adm0(3544) [libstorage] SystemCmd.cc:88 THROW: command failed
2022-03-23 14:28:03 <1> linux-adm0(4178) [Ruby] modules/Storage.rb(Mount):441 mounting /dev/sda2
continued on a second line
2022-03-23 14:28:05 <0> linux-adm0(3544) [zypp] MediaCurl.cc:742 done`

func writeSample(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "y2log")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFilterAll(t *testing.T) {
	out, err := runCommand(t, "filter", writeSample(t))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d output lines, want 5:\n%s", len(lines), out)
	}
	want := "2022-03-23 14:28:03 <1> linux-adm0(4178) [Ruby] modules/Storage.rb(Mount):441 mounting /dev/sda2"
	if lines[2] != want {
		t.Errorf("line 3 = %q, want %q", lines[2], want)
	}
	if lines[3] != "continued on a second line" {
		t.Errorf("line 4 = %q, want continuation line", lines[3])
	}
}

func TestFilterByLevelAndPID(t *testing.T) {
	out, err := runCommand(t, "filter", writeSample(t), "--level", "info", "--pid", "3544")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d output lines, want 1:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "execute open") {
		t.Errorf("unexpected entry: %q", lines[0])
	}
}

func TestFilterByTimeRange(t *testing.T) {
	out, err := runCommand(t, "filter", writeSample(t),
		"--from", "2022-03-23 14:28:02", "--to", "2022-03-23 14:28:03")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	if strings.Contains(out, "execute open") || strings.Contains(out, "MediaCurl") {
		t.Errorf("entries outside the range leaked through:\n%s", out)
	}
	if !strings.Contains(out, "THROW: command failed") || !strings.Contains(out, "mounting /dev/sda2") {
		t.Errorf("entries inside the range missing:\n%s", out)
	}
}

func TestFilterJSONOutput(t *testing.T) {
	out, err := runCommand(t, "filter", writeSample(t), "--component", "libstorage", "-o", "json")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d documents, want 1:\n%s", len(lines), out)
	}
	for _, want := range []string{`"level":"error"`, `"pid":3544`, `"file":"SystemCmd.cc"`, `"line":88`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("document missing %s:\n%s", want, lines[0])
		}
	}
}

func TestFilterBadLevelFlag(t *testing.T) {
	_, err := runCommand(t, "filter", writeSample(t), "--level", "loud")
	if err == nil {
		t.Fatal("expected error for unknown level name")
	}
}

func TestFilterUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "y2log")
	if err := os.WriteFile(path, []byte("this is not a y2log file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCommand(t, "filter", path)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStatsSummary(t *testing.T) {
	out, err := runCommand(t, "stats", writeSample(t))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	for _, want := range []string{"entries", "4", "from", "2022-03-23 14:28:01", "[zypp]"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestExportRequiresConfig(t *testing.T) {
	_, err := runCommand(t, "export", writeSample(t))
	if err == nil {
		t.Fatal("expected error when --config is missing")
	}
}

func TestExportFlagSurface(t *testing.T) {
	flags := newExportCmd().Flags()
	for _, name := range []string{"config", "metrics-addr", "level", "pid", "from", "to"} {
		if flags.Lookup(name) == nil {
			t.Errorf("export is missing the --%s flag", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "y2logs ") {
		t.Errorf("unexpected version output: %q", out)
	}
}

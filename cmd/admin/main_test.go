package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	flags := parseFlags([]string{"posts", "--status=draft", "--json", "--limit=5", "-x", "--empty="})

	want := map[string]string{"status": "draft", "json": "true", "limit": "5", "empty": ""}
	if len(flags) != len(want) {
		t.Fatalf("parseFlags() = %v, want %v", flags, want)
	}
	for k, v := range want {
		if flags[k] != v {
			t.Errorf("flag %s = %q, want %q", k, flags[k], v)
		}
	}
}

func TestIntFlag(t *testing.T) {
	flags := map[string]string{"n": "40"}
	if got := intFlag(flags, "n", 25); got != 40 {
		t.Errorf("intFlag(n) = %d, want 40", got)
	}
	if got := intFlag(flags, "offset", 7); got != 7 {
		t.Errorf("intFlag(offset) = %d, want default 7", got)
	}
}

func TestUsageListsCommands(t *testing.T) {
	for _, cmd := range []string{"migrate", "publish-due", "flush-views", "seed", "posts", "token"} {
		if !strings.Contains(usage, "\n  "+cmd+" ") {
			t.Errorf("usage does not document %s", cmd)
		}
	}
	if !strings.HasSuffix(usage, "\n") {
		t.Error("usage must end with a newline; it is printed with fmt.Print")
	}
}

func TestFormatting(t *testing.T) {
	if got := formatTime(nil); got != "-" {
		t.Errorf("formatTime(nil) = %q", got)
	}
	ts := time.Date(2025, 5, 1, 12, 30, 0, 0, time.Local)
	if got := formatTime(&ts); got != "2025-05-01 12:30" {
		t.Errorf("formatTime() = %q", got)
	}
	if got := truncate("derby-day-recap", 10); got != "derby-d..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
}

// internal/datalog/store_test.go
package datalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hydromon/stationd/internal/record"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := Mount(dir)
	if err != nil {
		t.Fatalf("Mount() err=%v", err)
	}
	return New(m, "data.csv", "data.jsonl", zerolog.Nop()), dir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestSave_EndToEndRow(t *testing.T) {
	s, dir := newTestStore(t)

	fields := map[string]record.Reading{"X_t": record.Value(42.0)}
	res := s.Save("2025-01-01T12:00:00Z", fields)

	if !res.OK() {
		t.Fatalf("save failed: %+v", res)
	}

	lines := readLines(t, filepath.Join(dir, "data.csv"))
	if lines[0] != "timestamp,X_t" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2025-01-01T12:00:00Z,42.0" {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestSave_HeaderWrittenOnce(t *testing.T) {
	s, dir := newTestStore(t)

	fields := map[string]record.Reading{"A_x": record.Value(1), "A_y": record.Value(2)}
	s.Save("t1", fields)
	s.Save("t2", fields)

	lines := readLines(t, filepath.Join(dir, "data.csv"))
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	for _, l := range lines[1:] {
		if strings.HasPrefix(l, "timestamp") {
			t.Fatalf("header rewritten: %q", l)
		}
	}
}

func TestSave_HeaderKeysSorted(t *testing.T) {
	s, dir := newTestStore(t)

	s.Save("t1", map[string]record.Reading{
		"Z_last": record.Value(1), "A_first": record.Value(2), "M_mid": record.Value(3),
	})

	lines := readLines(t, filepath.Join(dir, "data.csv"))
	if lines[0] != "timestamp,A_first,M_mid,Z_last" {
		t.Fatalf("header = %q", lines[0])
	}
}

func TestSave_ColumnCountStableWithAbsent(t *testing.T) {
	s, dir := newTestStore(t)

	s.Save("t1", map[string]record.Reading{"A_x": record.Value(1.5), "A_y": record.Value(2.5)})
	s.Save("t2", map[string]record.Reading{"A_x": record.Absent(), "A_y": record.Value(2.5)})

	lines := readLines(t, filepath.Join(dir, "data.csv"))
	want := len(strings.Split(lines[0], ","))
	for i, l := range lines {
		if got := len(strings.Split(l, ",")); got != want {
			t.Fatalf("line %d has %d columns, header has %d: %q", i, got, want, l)
		}
	}
	if lines[2] != "t2,,2.5" {
		t.Fatalf("absent cell not empty: %q", lines[2])
	}
}

func TestSave_AppendRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)

	const n = 5
	for i := 0; i < n; i++ {
		s.Save("t", map[string]record.Reading{"A_x": record.Value(float64(i))})
	}

	lines := readLines(t, filepath.Join(dir, "data.csv"))
	if len(lines) != n+1 {
		t.Fatalf("expected %d lines, got %d", n+1, len(lines))
	}
}

func TestSave_HeaderRewrittenWhenFirstLineForeign(t *testing.T) {
	s, dir := newTestStore(t)
	csv := filepath.Join(dir, "data.csv")

	if err := os.WriteFile(csv, []byte("garbage line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s.Save("t1", map[string]record.Reading{"A_x": record.Value(1)})

	lines := readLines(t, csv)
	if lines[0] != "timestamp,A_x" {
		t.Fatalf("foreign first line should be replaced by header, got %q", lines[0])
	}
}

func TestSave_JSONLRecordShape(t *testing.T) {
	s, dir := newTestStore(t)

	s.Save("2025-01-01T12:00:00Z", map[string]record.Reading{
		"X_t": record.Value(42.0), "X_u": record.Absent(),
	})

	lines := readLines(t, filepath.Join(dir, "data.jsonl"))
	var obj map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["timestamp"] != "2025-01-01T12:00:00Z" {
		t.Fatalf("timestamp = %v", obj["timestamp"])
	}
	if obj["X_t"] != 42.0 {
		t.Fatalf("X_t = %v", obj["X_t"])
	}
	if v, ok := obj["X_u"]; !ok || v != nil {
		t.Fatalf("X_u should be null, got %v ok=%v", v, ok)
	}
}

func TestSave_MediumUnavailableIsReportedNoop(t *testing.T) {
	s := New(nil, "data.csv", "data.jsonl", zerolog.Nop())

	res := s.Save("t1", map[string]record.Reading{"A_x": record.Value(1)})
	if res.Tabular || res.Structured || res.OK() {
		t.Fatalf("expected both sinks to report failure, got %+v", res)
	}
}

func TestSave_SinkFailuresAreIndependent(t *testing.T) {
	s, dir := newTestStore(t)

	// Make the CSV path unwritable by turning it into a directory.
	if err := os.Mkdir(filepath.Join(dir, "data.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	res := s.Save("t1", map[string]record.Reading{"A_x": record.Value(1)})
	if res.Tabular {
		t.Fatalf("csv append should fail")
	}
	if !res.Structured {
		t.Fatalf("jsonl append should still succeed")
	}

	lines := readLines(t, filepath.Join(dir, "data.jsonl"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 jsonl record, got %d", len(lines))
	}
}

func TestMount_MissingDir(t *testing.T) {
	if _, err := Mount(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestUnmount_NilMediumSafe(t *testing.T) {
	var m *Medium
	if err := m.Unmount(); err == nil {
		t.Fatalf("expected ErrUnavailable, got nil")
	}
}

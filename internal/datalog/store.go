// internal/datalog/store.go
package datalog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hydromon/stationd/internal/record"
)

// Store appends flattened records to the two on-card sinks: a schema-stable
// CSV file and a self-describing JSONL file. Both are append-only; the CSV
// column set is fixed by the first successful write for the file's lifetime.
type Store struct {
	medium    *Medium
	csvPath   string
	jsonlPath string
	log       zerolog.Logger
}

// New wires a Store onto a mounted medium. A nil medium is legal: every
// save then reports failure without touching the filesystem.
func New(m *Medium, csvFile, jsonlFile string, log zerolog.Logger) *Store {
	s := &Store{medium: m, log: log}
	if m != nil {
		s.csvPath = filepath.Join(m.dir, csvFile)
		s.jsonlPath = filepath.Join(m.dir, jsonlFile)
	}
	return s
}

// Save appends one timestamped record to both sinks. The appends are
// independent and failures are reported in the result, never returned as
// errors: a full card must not abort the cycle.
func (s *Store) Save(timestamp string, fields map[string]record.Reading) SaveResult {
	var res SaveResult

	if s.medium == nil {
		s.log.Warn().Str("subsys", "sd").Msg("storage medium not mounted, cannot save data")
		return res
	}

	if err := s.appendCSV(timestamp, fields); err != nil {
		s.log.Error().Str("subsys", "sd").Str("path", s.csvPath).Err(err).
			Msg("csv append failed")
	} else {
		res.Tabular = true
	}

	if err := s.appendJSONL(timestamp, fields); err != nil {
		s.log.Error().Str("subsys", "sd").Str("path", s.jsonlPath).Err(err).
			Msg("jsonl append failed")
	} else {
		res.Structured = true
	}

	if res.OK() {
		s.log.Info().Str("subsys", "sd").Msg("data written to storage")
	}

	return res
}

// ---- tabular sink ----

func (s *Store) appendCSV(timestamp string, fields map[string]record.Reading) error {
	if err := s.ensureCSVHeader(fields); err != nil {
		return err
	}

	keys := sortedKeys(fields)
	row := make([]string, 0, len(keys)+1)
	row = append(row, timestamp)
	for _, k := range keys {
		row = append(row, fields[k].String())
	}

	return appendLine(s.csvPath, strings.Join(row, ","))
}

// ensureCSVHeader writes the header when the file is missing or does not
// start with the literal "timestamp" token. Header keys are always sorted
// lexicographically, whatever order the record was built in.
func (s *Store) ensureCSVHeader(fields map[string]record.Reading) error {
	f, err := os.Open(s.csvPath)
	if err == nil {
		line, _ := bufio.NewReader(f).ReadString('\n')
		f.Close()
		if strings.HasPrefix(line, "timestamp") {
			return nil
		}
	}

	header := strings.Join(append([]string{"timestamp"}, sortedKeys(fields)...), ",")
	return os.WriteFile(s.csvPath, []byte(header+"\n"), 0o644)
}

// ---- structured sink ----

func (s *Store) appendJSONL(timestamp string, fields map[string]record.Reading) error {
	obj := make(map[string]any, len(fields)+1)
	obj["timestamp"] = timestamp
	for k, v := range fields {
		obj[k] = v
	}

	line, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return appendLine(s.jsonlPath, string(line))
}

// ---- helpers ----

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func sortedKeys(fields map[string]record.Reading) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

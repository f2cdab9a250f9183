// Package ingest turns tabular relationship files (CSV, JSON, TXT
// dumps) into Record sequences for the verification pipeline. The
// pipeline itself never parses files; it only consumes what this
// package produces.
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmarchante/relvet/internal/model"
	"github.com/rs/zerolog"
)

// Options controls how a file is interpreted.
type Options struct {
	// HasHeader indicates the first CSV row contains column names.
	HasHeader bool
	// CustomHeaders assigns column names when HasHeader is false.
	CustomHeaders []string
	// RemoveGarbage skips rows with missing required fields instead of
	// failing the load.
	RemoveGarbage bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{HasHeader: true, RemoveGarbage: true}
}

// Loader reads one relationship file.
type Loader struct {
	path string
	opts Options
	log  zerolog.Logger
}

// NewLoader creates a loader for the given path.
func NewLoader(path string, opts Options, log zerolog.Logger) *Loader {
	return &Loader{path: path, opts: opts, log: log}
}

// Load reads the file and returns its records. The format is chosen by
// extension: .csv, .json, or .txt relationship dumps. Excel sources
// must be exported to CSV first.
func (l *Loader) Load() ([]model.Record, error) {
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".csv":
		return l.loadCSV()
	case ".json":
		return l.loadJSON()
	case ".txt", ".tsv":
		return l.loadTXT()
	default:
		return nil, fmt.Errorf("unsupported file format: %s", l.path)
	}
}

// columnMap resolves which source columns carry the canonical
// relationship fields. Accented and unaccented Spanish headers from the
// historical datasets are accepted alongside English names.
type columnMap struct {
	id       int
	entity   int
	relation int
	related  int
}

var columnAliases = map[string][]string{
	"id":       {"ID", "Id", "id", "Linea", "Línea", "Line"},
	"entity":   {"Entidad", "entidad", "Entity", "entity"},
	"relation": {"Relación", "Relacion", "relación", "relacion", "Relation", "relation"},
	"related":  {"Elemento Relacionado", "ElementoRelacionado", "elemento relacionado", "Related", "related"},
}

func resolveColumns(headers []string) (columnMap, error) {
	index := func(aliases []string) int {
		for _, alias := range aliases {
			for i, h := range headers {
				if strings.TrimSpace(h) == alias {
					return i
				}
			}
		}
		return -1
	}

	cm := columnMap{
		id:       index(columnAliases["id"]),
		entity:   index(columnAliases["entity"]),
		relation: index(columnAliases["relation"]),
		related:  index(columnAliases["related"]),
	}
	if cm.id < 0 {
		return cm, fmt.Errorf("no identifier column found (expected one of %v)", columnAliases["id"])
	}
	if cm.entity < 0 {
		return cm, fmt.Errorf("no entity column found (expected one of %v)", columnAliases["entity"])
	}
	if cm.relation < 0 {
		return cm, fmt.Errorf("no relation column found (expected one of %v)", columnAliases["relation"])
	}
	if cm.related < 0 {
		return cm, fmt.Errorf("no related-element column found (expected one of %v)", columnAliases["related"])
	}
	return cm, nil
}

func (l *Loader) loadCSV() ([]model.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return []model.Record{}, nil
	}

	var headers []string
	if l.opts.HasHeader {
		headers = rows[0]
		rows = rows[1:]
	} else if len(l.opts.CustomHeaders) > 0 {
		headers = l.opts.CustomHeaders
	} else {
		return nil, fmt.Errorf("file has no header row and no custom headers were given")
	}

	// A single raw column holds packed relationship entries that use
	// the TXT line format (the historical single-column exports).
	if len(headers) == 1 {
		return l.recordsFromPackedColumn(rows)
	}

	cm, err := resolveColumns(headers)
	if err != nil {
		return nil, err
	}

	return l.recordsFromRows(headers, rows, cm), nil
}

func (l *Loader) recordsFromRows(headers []string, rows [][]string, cm columnMap) []model.Record {
	records := make([]model.Record, 0, len(rows))
	skipped := 0

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for i, row := range rows {
		rec := model.Record{
			ID:     cell(row, cm.id),
			Fields: map[string]string{},
		}
		for j, h := range headers {
			if j < len(row) {
				rec.Fields[strings.TrimSpace(h)] = strings.TrimSpace(row[j])
			}
		}
		rec.Fields[model.FieldEntity] = cell(row, cm.entity)
		rec.Fields[model.FieldRelation] = cell(row, cm.relation)
		rec.Fields[model.FieldRelated] = cell(row, cm.related)

		if rec.ID == "" || rec.Entity() == "" || rec.Related() == "" {
			skipped++
			if l.opts.RemoveGarbage {
				l.log.Warn().Int("row", i+1).Msg("skipping malformed row")
				continue
			}
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		l.log.Warn().Int("skipped", skipped).Str("file", l.path).Msg("rows with missing required fields")
	}
	return records
}

// recordsFromPackedColumn handles single-column exports where every
// cell is a packed relationship entry in the TXT line format.
func (l *Loader) recordsFromPackedColumn(rows [][]string) ([]model.Record, error) {
	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec, ok := parseEntry(strings.TrimSpace(row[0]))
		if !ok {
			l.log.Warn().Int("row", i+1).Msg("cannot parse packed entry")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) loadJSON() ([]model.Record, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if len(raw) == 0 {
		return []model.Record{}, nil
	}

	headers := make([]string, 0, len(raw[0]))
	for k := range raw[0] {
		headers = append(headers, k)
	}
	cm, err := resolveColumns(headers)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(raw))
	for _, obj := range raw {
		row := make([]string, len(headers))
		for j, h := range headers {
			if v, ok := obj[h]; ok && v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	return l.recordsFromRows(headers, rows, cm), nil
}

func (l *Loader) loadTXT() ([]model.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []model.Record
	var problematic int
	lineNo := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, ok := parseEntry(line)
		if !ok {
			problematic++
			if l.opts.RemoveGarbage {
				l.log.Warn().Int("line", lineNo).Str("text", truncate(line, 120)).Msg("malformed line")
			}
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	if problematic > 0 {
		l.log.Warn().
			Int("problematic", problematic).
			Int("total", lineNo).
			Str("file", l.path).
			Msg("lines could not be parsed")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no parsable lines in %s", l.path)
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

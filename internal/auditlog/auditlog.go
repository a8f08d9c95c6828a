// Package auditlog keeps a per-company CSV trail of mutating
// bookkeeping operations.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one row in audit-log.csv.
type Record struct {
	ID        string
	Timestamp time.Time
	Action    string
	Detail    string
	EntryID   string
}

// Header is the CSV header for audit-log.csv.
const Header = "id,timestamp,action,detail,entry_id"

const (
	logFile   = "audit-log.csv"
	numFields = 5

	colID        = 0
	colTimestamp = 1
	colAction    = 2
	colDetail    = 3
	colEntryID   = 4
)

// NewRecord builds a Record with a fresh ID and the current time.
func NewRecord(action, detail, entryID string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Detail:    detail,
		EntryID:   entryID,
	}
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r Record) []string {
	row := make([]string, numFields)
	row[colID] = r.ID
	row[colTimestamp] = r.Timestamp.Format(time.RFC3339)
	row[colAction] = r.Action
	row[colDetail] = r.Detail
	row[colEntryID] = r.EntryID
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[colTimestamp])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", row[colTimestamp], err)
	}
	return Record{
		ID:        row[colID],
		Timestamp: ts,
		Action:    row[colAction],
		Detail:    row[colDetail],
		EntryID:   row[colEntryID],
	}, nil
}

// Append writes records to <companyDir>/audit-log.csv, creating the
// file and header if needed.
func Append(companyDir string, records []Record) error {
	path := filepath.Join(companyDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	return cw.Error()
}

// Read returns all records from <companyDir>/audit-log.csv, or nil
// when the log does not exist yet.
func Read(companyDir string) ([]Record, error) {
	f, err := os.Open(filepath.Join(companyDir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var records []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

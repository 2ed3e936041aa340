// Package file persists step lists as CSV, the interchange format shared
// with the review UI and spreadsheet tooling.
package file

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

// header is written on export and skipped on import.
var header = []string{"action", "target", "value", "description"}

// headerMarkers are first-cell values that identify a header row.
var headerMarkers = []string{"action", "step", "command"}

// formulaChars are field prefixes spreadsheet applications interpret as
// formulas. Exported fields starting with one get a leading apostrophe;
// import strips it back off.
const formulaChars = "=+-@"

// StepFile is a CSV-backed StepStore.
type StepFile struct {
	path string
}

func NewStepFile(path string) *StepFile {
	return &StepFile{path: path}
}

// Load reads and decodes the step list.
func (f *StepFile) Load() ([]protocol.StepRecord, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open steps file: %w", err)
	}
	defer fh.Close()
	steps, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return steps, nil
}

// Save encodes and writes the step list. The write goes through a temp file
// in the same directory and renames over the target, so readers never see a
// partial file.
func (f *StepFile) Save(steps []protocol.StepRecord) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".steps-*.csv")
	if err != nil {
		return fmt.Errorf("create temp steps file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, steps); err != nil {
		tmp.Close()
		return fmt.Errorf("encode steps: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp steps file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace steps file: %w", err)
	}
	return nil
}

// Encode writes steps as CSV with a header row. Quoting follows RFC 4180:
// fields containing a comma, quote, or line break are quoted with embedded
// quotes doubled.
func Encode(w io.Writer, steps []protocol.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range steps {
		row := []string{
			guardFormula(s.Action),
			guardFormula(s.Target),
			guardFormula(s.Value),
			guardFormula(s.Description),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads steps from CSV. A first row whose first cell equals "action",
// "step", or "command" (case-insensitive) is treated as a header and
// skipped. Short rows pad to four fields; blank rows are dropped. Actions
// upper-case on ingestion.
func Decode(r io.Reader) ([]protocol.StepRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var steps []protocol.StepRecord
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}
		if isBlank(row) {
			continue
		}

		var fields [4]string
		for i := 0; i < len(fields) && i < len(row); i++ {
			fields[i] = unguardFormula(row[i])
		}
		steps = append(steps, protocol.StepRecord{
			Action:      strings.ToUpper(strings.TrimSpace(fields[0])),
			Target:      fields[1],
			Value:       fields[2],
			Description: fields[3],
		})
	}
	return steps, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	cell := strings.TrimSpace(row[0])
	for _, m := range headerMarkers {
		if strings.EqualFold(cell, m) {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func guardFormula(field string) string {
	if field != "" && strings.ContainsRune(formulaChars, rune(field[0])) {
		return "'" + field
	}
	return field
}

func unguardFormula(field string) string {
	if len(field) > 1 && field[0] == '\'' && strings.ContainsRune(formulaChars, rune(field[1])) {
		return field[1:]
	}
	return field
}

package decode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// ParseCSV reads a delimited table with a header row. comma 0 means ','.
func ParseCSV(r io.Reader, comma rune) (Table, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: csv header: %v", trajectory.ErrInvalidInput, err)
	}
	t := Table{Columns: trimAll(header)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: csv: %v", trajectory.ErrInvalidInput, err)
		}
		t.Rows = append(t.Rows, trimAll(rec))
	}
	return t, nil
}

func trimAll(ss []string) []string {
	for i, s := range ss {
		ss[i] = strings.TrimSpace(s)
	}
	return ss
}

package decode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Table is a decoded text table: a header and string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// nullValues are cells that decode as a missing number.
var nullValues = map[string]bool{"": true, "NULL": true, "null": true, "None": true, "NaN": true, "nan": true}

// ToNumber converts s to a number if possible, trying an integer first and
// then a float. Null markers such as NULL decode as NaN and report true.
func ToNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if nullValues[s] {
		return math.NaN(), true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return 0, false
}

// numericColumns returns the columns whose every cell passes ToNumber,
// excluding those that are entirely null.
func (t Table) numericColumns() map[string][]float64 {
	out := make(map[string][]float64)
	for j, name := range t.Columns {
		col := make([]float64, len(t.Rows))
		ok, seen := true, false
		for i, row := range t.Rows {
			v, isNum := ToNumber(row[j])
			if !isNum {
				ok = false
				break
			}
			if !math.IsNaN(v) {
				seen = true
			}
			col[i] = v
		}
		if ok && seen {
			out[name] = col
		}
	}
	return out
}

// times reads the time column as UNIX seconds. Cells are numbers or UTC
// date strings; null cells decode as NaN.
func (t Table) times() ([]float64, error) {
	k := t.Index(trajectory.TimeColumn)
	if k < 0 {
		return nil, fmt.Errorf("%w: table has no %q column", trajectory.ErrInvalidInput, trajectory.TimeColumn)
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if v, ok := ToNumber(row[k]); ok {
			out[i] = v
			continue
		}
		sec, err := timeutil.ParseUnixTimestamp(row[k], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", trajectory.ErrInvalidInput, i+1, err)
		}
		out[i] = float64(sec)
	}
	return out, nil
}

// Trajectory converts the whole table into one trajectory named id. The
// table must have a time column of numbers or dates; non-numeric columns are
// ignored and rows without a time are dropped. Rows are sorted by time and
// duplicate timestamps collapsed.
func (t Table) Trajectory(id string) (trajectory.Trajectory, error) {
	times, err := t.times()
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	cols := t.numericColumns()
	delete(cols, trajectory.TimeColumn)

	keep := make([]int, 0, len(times))
	for i, v := range times {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			keep = append(keep, i)
		}
	}
	tr := trajectory.Trajectory{ID: id, Time: pick(times, keep), Columns: make(map[string][]float64, len(cols))}
	for name, col := range cols {
		tr.Columns[name] = pick(col, keep)
	}
	tr = trajectory.SortByTime(tr)
	if err := tr.Validate(); err != nil {
		return trajectory.Trajectory{}, err
	}
	return tr, nil
}

// Split groups rows by the value of the key column and converts each group
// to a trajectory whose ID is the key. Groups are returned in key order;
// groups that do not form a valid trajectory are skipped and logged.
func (t Table) Split(key string) ([]trajectory.Trajectory, error) {
	k := t.Index(key)
	if k < 0 {
		return nil, fmt.Errorf("%w: table has no %q column", trajectory.ErrInvalidInput, key)
	}
	groups := make(map[string][][]string)
	for _, row := range t.Rows {
		groups[row[k]] = append(groups[row[k]], row)
	}
	keys := make([]string, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Strings(keys)

	var out []trajectory.Trajectory
	for _, g := range keys {
		tr, err := Table{Columns: t.Columns, Rows: groups[g]}.Trajectory(g)
		if err != nil {
			monitoring.Logf("decode: skipping %s=%s: %v", key, g, err)
			continue
		}
		out = append(out, tr)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no group of %q forms a trajectory", trajectory.ErrInvalidInput, key)
	}
	return out, nil
}

// ParsePipeTable reads a ruled text table as printed by SQL shells:
//
//	+------+--------+
//	| time | lat    |
//	+------+--------+
//	| 1    | 30.1   |
//	+------+--------+
//
// Repeated rule and header lines (paginated output) are skipped, as are
// lines that are not table rows. An empty input yields an empty Table.
func ParsePipeTable(r io.Reader) (Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		t      Table
		rule   string
		header string
		line   int
	)
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, "+") {
			if rule == "" {
				rule = s
			}
			continue
		}
		if !strings.HasPrefix(s, "|") {
			continue
		}
		if header == "" {
			header = s
			t.Columns = splitRow(s)
			continue
		}
		if s == header || s == rule {
			continue
		}
		cells := splitRow(s)
		if len(cells) != len(t.Columns) {
			return Table{}, fmt.Errorf("%w: line %d has %d cells, header has %d",
				trajectory.ErrInvalidInput, line, len(cells), len(t.Columns))
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("failed to read table: %w", err)
	}
	if header == "" {
		monitoring.Logf("decode: table input is empty")
	}
	return t, nil
}

// splitRow splits "| a | b |" into trimmed cells, dropping the empty fields
// outside the outer bars.
func splitRow(s string) []string {
	parts := strings.Split(s, "|")
	if len(parts) >= 2 {
		parts = parts[1 : len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func pick(vs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vs[j]
	}
	return out
}

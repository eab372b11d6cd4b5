// Package decode turns state-vector exports into trajectories. Two text
// formats are understood: ruled pipe tables as printed by SQL shells, and
// CSV with a header row.
package decode

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Decoder produces one trajectory from an input stream or file.
type Decoder interface {
	Decode(r io.Reader) (trajectory.Trajectory, error)
	DecodeFile(path string) (trajectory.Trajectory, error)
}

// Format selects the table syntax of a TableDecoder.
type Format int

const (
	PipeTable Format = iota
	CSV
)

func (f Format) String() string {
	if f == CSV {
		return "csv"
	}
	return "pipe"
}

// DefaultGroupBy is the column that identifies an aircraft in state-vector
// exports.
const DefaultGroupBy = "icao24"

// DefaultMaxBytes caps the size of files read by DecodeFile.
const DefaultMaxBytes = 256 * 1024 * 1024

// TableDecoder decodes tabular state vectors. The zero value reads pipe
// tables from the OS filesystem.
type TableDecoder struct {
	Format Format
	// FS is used by the *File methods; nil means the OS filesystem.
	FS fsutil.FileSystem
	// ID names the trajectory returned by Decode. Empty uses the first
	// GroupBy value, falling back to the file name or "flight".
	ID string
	// GroupBy is the aircraft column used by DecodeAll.
	GroupBy string
	// MaxBytes limits file size; zero means DefaultMaxBytes.
	MaxBytes int64
}

var _ Decoder = (*TableDecoder)(nil)

// ForPath picks a decoder by file extension: .csv and .tsv are delimited,
// anything else is treated as a pipe table.
func ForPath(path string) *TableDecoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return &TableDecoder{Format: CSV}
	default:
		return &TableDecoder{Format: PipeTable}
	}
}

// ReadTable parses r in the decoder's format.
func (d *TableDecoder) ReadTable(r io.Reader) (Table, error) {
	if d.Format == CSV {
		return ParseCSV(r, 0)
	}
	return ParsePipeTable(r)
}

// Decode reads the whole table as one trajectory.
func (d *TableDecoder) Decode(r io.Reader) (trajectory.Trajectory, error) {
	t, err := d.ReadTable(r)
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	return t.Trajectory(d.idFor(t, ""))
}

// DecodeFile decodes path. TSV files are split on tabs.
func (d *TableDecoder) DecodeFile(path string) (trajectory.Trajectory, error) {
	data, err := d.read(path)
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	t, err := d.tableFor(path, data)
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("%s: %w", path, err)
	}
	tr, err := t.Trajectory(d.idFor(t, fileID(path)))
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// DecodeAll splits the table into one trajectory per GroupBy value. Tables
// without the GroupBy column decode as a single trajectory.
func (d *TableDecoder) DecodeAll(r io.Reader) ([]trajectory.Trajectory, error) {
	t, err := d.ReadTable(r)
	if err != nil {
		return nil, err
	}
	return d.splitTable(t, "")
}

// DecodeAllFile is DecodeAll on a file.
func (d *TableDecoder) DecodeAllFile(path string) ([]trajectory.Trajectory, error) {
	data, err := d.read(path)
	if err != nil {
		return nil, err
	}
	t, err := d.tableFor(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out, err := d.splitTable(t, fileID(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func (d *TableDecoder) splitTable(t Table, fallback string) ([]trajectory.Trajectory, error) {
	if t.Index(d.groupBy()) < 0 {
		tr, err := t.Trajectory(d.idFor(t, fallback))
		if err != nil {
			return nil, err
		}
		return []trajectory.Trajectory{tr}, nil
	}
	return t.Split(d.groupBy())
}

func (d *TableDecoder) tableFor(path string, data []byte) (Table, error) {
	if d.Format == CSV && strings.EqualFold(filepath.Ext(path), ".tsv") {
		return ParseCSV(bytes.NewReader(data), '\t')
	}
	return d.ReadTable(bytes.NewReader(data))
}

func (d *TableDecoder) read(path string) ([]byte, error) {
	fsys := d.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	limit := d.MaxBytes
	if limit == 0 {
		limit = DefaultMaxBytes
	}
	data, err := fsutil.ReadLimited(fsys, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read state vectors: %w", err)
	}
	return data, nil
}

func (d *TableDecoder) groupBy() string {
	if d.GroupBy == "" {
		return DefaultGroupBy
	}
	return d.GroupBy
}

func (d *TableDecoder) idFor(t Table, fallback string) string {
	if d.ID != "" {
		return d.ID
	}
	if k := t.Index(d.groupBy()); k >= 0 && len(t.Rows) > 0 && t.Rows[0][k] != "" {
		return t.Rows[0][k]
	}
	if fallback != "" {
		return fallback
	}
	return "flight"
}

func fileID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

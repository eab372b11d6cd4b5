// Package render draws plotting.Figure models as PNG images (gonum/plot) or
// interactive HTML pages (go-echarts), and writes them into stamped output
// directories.
package render

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/plotting"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	HTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, HTML:
		return f, nil
	case "":
		return PNG, nil
	}
	return "", fmt.Errorf("%w: unknown output format %q", trajectory.ErrInvalidInput, s)
}

// ContentType is the HTTP content type of f.
func (f Format) ContentType() string {
	if f == HTML {
		return "text/html; charset=utf-8"
	}
	return "image/png"
}

// Render encodes fig in format to w.
func Render(w io.Writer, fig plotting.Figure, format Format) error {
	switch format {
	case PNG:
		return renderPNG(w, fig)
	case HTML:
		return renderHTML(w, fig)
	}
	return fmt.Errorf("%w: unknown output format %q", trajectory.ErrInvalidInput, format)
}

// Output writes rendered figures below Dir. Each Save call creates one run
// directory named after the clock time and a random job id.
type Output struct {
	FS    fsutil.FileSystem
	Dir   string
	Clock timeutil.Clock
}

// NewOutput returns an Output on the OS filesystem and real clock.
func NewOutput(dir string) *Output {
	return &Output{FS: fsutil.OSFileSystem{}, Dir: dir, Clock: timeutil.RealClock{}}
}

// Save renders every figure in every format into a new run directory and
// returns the paths written.
func (o *Output) Save(figs []plotting.Figure, formats ...Format) ([]string, error) {
	if len(formats) == 0 {
		formats = []Format{PNG}
	}
	run := path.Join(o.Dir, RunName(o.Clock, uuid.New()))
	if err := o.FS.MkdirAll(run, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, fig := range figs {
		for _, format := range formats {
			var buf bytes.Buffer
			if err := Render(&buf, fig, format); err != nil {
				return written, fmt.Errorf("render %s: %w", fig.Name, err)
			}
			name := path.Join(run, fig.Name+"."+string(format))
			if err := o.FS.WriteFile(name, buf.Bytes(), 0o644); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", name, err)
			}
			written = append(written, name)
		}
	}
	monitoring.Logf("render: wrote %d files to %s", len(written), run)
	return written, nil
}

// RunName is the directory name of one render run.
func RunName(c timeutil.Clock, job uuid.UUID) string {
	return timeutil.RunStamp(c.Now()) + "-" + job.String()[:8]
}

// Package export lowers designs to output formats.
//
// An [Exporter] writes one design at a time. [SVGExporter] draws a mask
// preview, [JSONExporter] dumps the flattened geometry, and [RasterExporter]
// converts the preview to PNG or PDF with rsvg-convert. [WriteLibrary] runs
// an exporter over every design in a library.
//
// Exporters only accept designs that pass [Check].
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
)

// Exporter writes a design in one output format.
type Exporter interface {
	// Format returns the file extension the exporter produces, e.g. "svg".
	Format() string
	// Export writes d to w.
	Export(d *database.Design, w io.Writer) error
}

// Formats lists the formats [New] accepts.
var Formats = []string{"svg", "json", "png", "pdf"}

// New returns the exporter for format.
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "svg":
		return NewSVG(), nil
	case "json":
		return NewJSON(), nil
	case "png":
		return NewRaster("png", 2), nil
	case "pdf":
		return NewRaster("pdf", 1), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported export format %q (must be one of %s)", format, strings.Join(Formats, ", "))
}

// Check verifies that d can be exported: every instance is placed and pin
// names are unique.
func Check(d *database.Design) error {
	for _, inst := range d.Instances() {
		if !inst.Placed() {
			return errors.New(errors.ErrCodeUnplacedInstance, "design %s: instance %s is not placed", d.Name(), inst.Name())
		}
	}
	seen := make(map[string]bool)
	for _, p := range d.Pins() {
		if seen[p.Name] {
			return errors.New(errors.ErrCodeDuplicatePin, "design %s: duplicate pin %s", d.Name(), p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Bytes exports d and returns the output.
func Bytes(e Exporter, d *database.Design) ([]byte, error) {
	if err := Check(d); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := e.Export(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile exports d to path.
func WriteFile(e Exporter, d *database.Design, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := Bytes(e, d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteLibrary exports every design in lib into dir as <design>.<format>
// and returns the written paths. Nothing is written unless every design
// passes [Check].
func WriteLibrary(e Exporter, lib *database.Library, dir string) ([]string, error) {
	designs := lib.Designs()
	for _, d := range designs {
		if err := Check(d); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(designs))
	for _, d := range designs {
		path := filepath.Join(dir, d.Name()+"."+e.Format())
		if err := WriteFile(e, d, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

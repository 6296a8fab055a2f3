package export

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
)

// RasterExporter renders the SVG preview and converts it with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RasterExporter struct {
	format string
	scale  float64
	svg    *SVGExporter
}

// NewRaster returns an exporter for "png" or "pdf". Scale applies to PNG
// output only; 2 doubles the resolution.
func NewRaster(format string, scale float64, opts ...SVGOption) *RasterExporter {
	return &RasterExporter{format: format, scale: scale, svg: NewSVG(opts...)}
}

func (e *RasterExporter) Format() string { return e.format }

func (e *RasterExporter) Export(d *database.Design, w io.Writer) error {
	var svg bytes.Buffer
	if err := e.svg.Export(d, &svg); err != nil {
		return err
	}
	var (
		out []byte
		err error
	)
	switch e.format {
	case "png":
		out, err = ToPNG(svg.Bytes(), e.scale)
	case "pdf":
		out, err = ToPDF(svg.Bytes())
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported raster format %q", e.format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// ToPDF converts SVG bytes to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// ToPNG converts SVG bytes to PNG with the given scale factor.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

package templatedb

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// Mode selects how [Export] treats records already in the target.
type Mode int

const (
	// ModeWrite replaces the whole target with the new record.
	ModeWrite Mode = iota
	// ModeAppend keeps existing records and fails if the cell already exists.
	ModeAppend
	// ModeOverwrite keeps existing records and replaces a same-named one.
	ModeOverwrite
)

var modeNames = [...]string{ModeWrite: "write", ModeAppend: "append", ModeOverwrite: "overwrite"}

func (m Mode) String() string {
	if m < ModeWrite || m > ModeOverwrite {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses "write", "append", or "overwrite".
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeWrite, errors.New(errors.ErrCodeInvalidInput, "unknown export mode %q (must be write, append, or overwrite)", s)
}

// MarshalYAML writes boxes in flow style: [[0, 0], [400, 2000]].
func (b Box) MarshalYAML() (any, error) {
	outer := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, pt := range b {
		inner := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range pt {
			inner.Content = append(inner.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
		}
		outer.Content = append(outer.Content, inner)
	}
	return outer, nil
}

// merge applies rec to the existing records according to mode.
func merge(existing map[string]Record, rec Record, mode Mode) (map[string]Record, error) {
	switch mode {
	case ModeWrite:
		return map[string]Record{rec.Cell: rec}, nil
	case ModeAppend:
		if _, ok := existing[rec.Cell]; ok {
			return nil, errors.New(errors.ErrCodeSerialization, "template %s already exists (use overwrite mode to replace it)", rec.Cell)
		}
	case ModeOverwrite:
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown export mode %v", mode)
	}
	out := maps.Clone(existing)
	if out == nil {
		out = make(map[string]Record)
	}
	out[rec.Cell] = rec
	return out, nil
}

// WriteYAML encodes records as a mapping keyed by cell name, sorted.
func WriteYAML(w io.Writer, recs []Record) error {
	doc := make(map[string]Record, len(recs))
	for _, r := range recs {
		doc[r.Cell] = r
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "encode template records")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "encode template records")
	}
	return nil
}

// ReadYAML decodes and verifies every record in r, sorted by cell name. An
// empty document yields no records.
func ReadYAML(r io.Reader) ([]Record, error) {
	var doc map[string]Record
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "decode template records")
	}
	out := make([]Record, 0, len(doc))
	for _, cell := range slices.Sorted(maps.Keys(doc)) {
		rec := doc[cell]
		rec.Cell = cell
		if err := rec.Verify(); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func readFile(path string) (map[string]Record, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "open %s", path)
	}
	defer f.Close()

	recs, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make(map[string]Record, len(recs))
	for _, r := range recs {
		out[r.Cell] = r
	}
	return out, nil
}

// Export writes rec to the YAML file at path under mode. The file is written
// to a temporary sibling and renamed into place, so a failed export leaves
// the original untouched.
func Export(rec Record, path string, mode Mode) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	rec = rec.Seal()
	if err := rec.Verify(); err != nil {
		return err
	}

	var existing map[string]Record
	if mode != ModeWrite {
		var err error
		if existing, err = readFile(path); err != nil {
			return err
		}
	}
	merged, err := merge(existing, rec, mode)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, slices.Collect(maps.Values(merged))); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "create temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeSerialization, err, "write %s", path)
	}
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeSerialization, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "replace %s", path)
	}
	return nil
}

// Import reads the named record from the YAML file at path.
func Import(path, cell string) (Record, error) {
	recs, err := ImportAll(path)
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.Cell == cell {
			return r, nil
		}
	}
	return Record{}, errors.New(errors.ErrCodeNotFound, "%s has no template %q", path, cell)
}

// ImportAll reads every record from the YAML file at path, sorted by cell.
func ImportAll(path string) ([]Record, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "open %s", path)
	}
	defer f.Close()

	recs, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

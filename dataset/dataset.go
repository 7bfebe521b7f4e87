// Package dataset loads labelled numeric samples for training.
//
// Two layouts are supported. FormatWhitespace is one sample per line with the
// label followed by the features, separated by spaces or tabs. FormatCSV reads
// comma separated records with an optional header row. In both cases the
// label column can be moved with Options.LabelColumn.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// Format selects the text layout of the input.
type Format int

const (
	// FormatWhitespace is "label f1 f2 ..." per line.
	FormatWhitespace Format = iota
	// FormatCSV is comma separated values.
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatWhitespace:
		return "whitespace"
	case FormatCSV:
		return "csv"
	}
	return "unknown"
}

// ParseFormat parses "whitespace", "txt", or "csv".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "whitespace", "txt", "ws":
		return FormatWhitespace, nil
	case "csv":
		return FormatCSV, nil
	}
	return 0, errors.NewValidationError("format", "must be one of whitespace, csv", s)
}

// Options controls Load.
type Options struct {
	Format Format

	// LabelColumn is the index of the label within a record.
	LabelColumn int

	// Features is the expected number of features. 0 infers it from the first record.
	Features int

	// Header skips the first record. Only used by FormatCSV.
	Header bool
}

// Dataset holds samples in row form, ready for GDRegression.Train.
type Dataset struct {
	X [][]float64
	Y []float64
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// NFeatures returns the number of features per sample.
func (d *Dataset) NFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	d, err := Load(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "load dataset %s", path)
	}
	return d, nil
}

// Load reads every sample from r.
//
// A record whose field count differs from the first one yields a
// *errors.DimensionError mentioning the line; an unparsable number yields a
// *errors.ValueError. An input without samples returns errors.ErrEmptyData.
func Load(r io.Reader, opts Options) (*Dataset, error) {
	if opts.LabelColumn < 0 {
		return nil, errors.NewValidationError("label_column", "must be non-negative", opts.LabelColumn)
	}
	if opts.Features < 0 {
		return nil, errors.NewValidationError("features", "must be non-negative (0 infers)", opts.Features)
	}

	b := builder{opts: opts}
	var err error
	switch opts.Format {
	case FormatWhitespace:
		err = b.readWhitespace(r)
	case FormatCSV:
		err = b.readCSV(r)
	default:
		err = errors.NewValidationError("format", "unknown format", int(opts.Format))
	}
	if err != nil {
		return nil, err
	}

	if len(b.ds.Y) == 0 {
		return nil, errors.NewModelError("dataset.Load", "no samples", errors.ErrEmptyData)
	}
	return &b.ds, nil
}

type builder struct {
	opts Options
	ds   Dataset
}

func (b *builder) readWhitespace(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := b.add(line, strings.Fields(text)); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "read whitespace dataset")
}

func (b *builder) readCSV(r io.Reader) error {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read csv dataset")
		}
		line, _ := reader.FieldPos(0)
		if first && b.opts.Header {
			first = false
			continue
		}
		first = false
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if err := b.add(line, rec); err != nil {
			return err
		}
	}
}

// add parses one record and appends it to the dataset.
func (b *builder) add(line int, fields []string) error {
	if b.opts.Features == 0 {
		b.opts.Features = len(fields) - 1
	}
	want := b.opts.Features + 1
	if len(fields) != want {
		return errors.Wrapf(errors.NewDimensionError("dataset.Load", want, len(fields), 1), "line %d", line)
	}
	if b.opts.LabelColumn >= want {
		return errors.NewValidationError("label_column", "out of range for records with "+strconv.Itoa(want)+" fields", b.opts.LabelColumn)
	}
	if want < 2 {
		return errors.Wrapf(errors.NewValueError("dataset.Load", "record has no features"), "line %d", line)
	}

	x := make([]float64, 0, want-1)
	var y float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.Wrapf(errors.NewValueError("dataset.Load", "cannot parse "+strconv.Quote(s)+" as a number"), "line %d field %d", line, i)
		}
		if i == b.opts.LabelColumn {
			y = v
		} else {
			x = append(x, v)
		}
	}

	b.ds.X = append(b.ds.X, x)
	b.ds.Y = append(b.ds.Y, y)
	return nil
}

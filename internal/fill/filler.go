// Package fill applies stored answers to live form controls.
package fill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/v0xg/formfill/internal/form"
	"github.com/v0xg/formfill/internal/store"
)

var (
	// ErrFileNotFound means a file input's stored path does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrDropdownSelection means no option matched by visible text or value
	ErrDropdownSelection = errors.New("could not select dropdown value")
	// ErrValueType means the stored value does not suit the field category
	ErrValueType = errors.New("stored value has the wrong type")
)

// Outcome is what happened to a single field
type Outcome int

const (
	// Skipped fields have no stored answer
	Skipped Outcome = iota
	Filled
	// Unchanged fields already held the stored state
	Unchanged
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Filled:
		return "filled"
	case Unchanged:
		return "unchanged"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result records the outcome for one field
type Result struct {
	Key     string
	Field   form.Descriptor
	Outcome Outcome
	Err     error
}

// Report lists field results in the order they were processed
type Report struct {
	Results []Result
}

// Count returns how many fields ended with outcome o
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns the failed results
func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == Failed {
			out = append(out, res)
		}
	}
	return out
}

// Filler writes stored answers into form controls. Failures are reported per
// field and never stop the remaining fields.
type Filler struct {
	store  *store.Store
	scope  store.Scope
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Filler
type Option func(*Filler)

func WithScope(sc store.Scope) Option {
	return func(f *Filler) { f.scope = sc }
}

// WithOutput sets where per-field console messages go
func WithOutput(w io.Writer) Option {
	return func(f *Filler) { f.out = w }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Filler) { f.logger = l }
}

// New creates a Filler reading answers from st
func New(st *store.Store, opts ...Option) *Filler {
	f := &Filler{store: st, out: io.Discard, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type strategy func(f *Filler, fld form.Field, v store.Value) (Outcome, error)

// Fill applies answers to one form. Buckets are processed as text inputs,
// file inputs, checkboxes, then dropdowns.
func (f *Filler) Fill(ctx context.Context, pageURL string, snap form.Snapshot) (Report, error) {
	var report Report

	buckets := []struct {
		fields []form.Field
		apply  strategy
	}{
		{snap.TextInputs, (*Filler).fillText},
		{snap.FileInputs, (*Filler).fillFile},
		{snap.Checkboxes, (*Filler).fillCheckbox},
		{snap.Dropdowns, (*Filler).fillDropdown},
	}

	for _, b := range buckets {
		for _, fld := range b.fields {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Results = append(report.Results, f.fillOne(pageURL, snap.Index, fld, b.apply))
		}
	}
	return report, nil
}

func (f *Filler) fillOne(pageURL string, formIndex int, fld form.Field, apply strategy) Result {
	res := Result{Field: fld.Descriptor}
	if !fld.Named() {
		return res
	}

	res.Key = f.scope.Key(pageURL, formIndex, fld.Name)
	v, ok := f.store.Get(res.Key)
	if !ok {
		return res
	}

	res.Outcome, res.Err = apply(f, fld, v)
	if res.Err != nil {
		res.Outcome = Failed
		f.logger.Warn("Field not filled",
			zap.String("field", fld.Name),
			zap.String("category", fld.Category.String()),
			zap.Error(res.Err))
		f.warn(fld, v, res.Err)
	}
	return res
}

func (f *Filler) fillText(fld form.Field, v store.Value) (Outcome, error) {
	text, ok := v.AsString()
	if !ok {
		return Failed, ErrValueType
	}
	if err := fld.Element.Clear(); err != nil {
		return Failed, fmt.Errorf("clear: %w", err)
	}
	if err := fld.Element.Input(text); err != nil {
		return Failed, fmt.Errorf("input: %w", err)
	}
	fmt.Fprintf(f.out, "Filled text input: %s\n", fld.Name)
	return Filled, nil
}

// fillFile attaches the stored path. A leading ~ is expanded to the home directory.
func (f *Filler) fillFile(fld form.Field, v store.Value) (Outcome, error) {
	raw, ok := v.AsString()
	if !ok {
		return Failed, ErrValueType
	}

	path, err := homedir.Expand(raw)
	if err != nil {
		return Failed, fmt.Errorf("%w: %s: %v", ErrFileNotFound, raw, err)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Failed, fmt.Errorf("%w: %s", ErrFileNotFound, raw)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Failed, err
	}

	if err := fld.Element.SetFiles([]string{abs}); err != nil {
		return Failed, fmt.Errorf("set files: %w", err)
	}
	fmt.Fprintf(f.out, "Attached file for %s: %s\n", fld.Name, abs)
	return Filled, nil
}

// fillCheckbox clicks only when the current state differs from the stored one
func (f *Filler) fillCheckbox(fld form.Field, v store.Value) (Outcome, error) {
	want, ok := v.AsBool()
	if !ok {
		return Failed, ErrValueType
	}
	checked, err := fld.Element.Selected()
	if err != nil {
		return Failed, fmt.Errorf("read checked state: %w", err)
	}
	if checked == want {
		return Unchanged, nil
	}
	if err := fld.Element.Click(); err != nil {
		return Failed, fmt.Errorf("click: %w", err)
	}
	if want {
		fmt.Fprintf(f.out, "Checked checkbox: %s\n", fld.Name)
	} else {
		fmt.Fprintf(f.out, "Unchecked checkbox: %s\n", fld.Name)
	}
	return Filled, nil
}

// fillDropdown selects by visible text, falling back to the option value
func (f *Filler) fillDropdown(fld form.Field, v store.Value) (Outcome, error) {
	want, ok := v.AsString()
	if !ok {
		return Failed, ErrValueType
	}
	textErr := fld.Element.SelectByText(want)
	if textErr == nil {
		fmt.Fprintf(f.out, "Selected %q for dropdown: %s\n", want, fld.Name)
		return Filled, nil
	}
	valueErr := fld.Element.SelectByValue(want)
	if valueErr == nil {
		fmt.Fprintf(f.out, "Selected %q for dropdown: %s\n", want, fld.Name)
		return Filled, nil
	}
	return Failed, fmt.Errorf("%w %q: by text: %v; by value: %v", ErrDropdownSelection, want, textErr, valueErr)
}

func (f *Filler) warn(fld form.Field, v store.Value, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		fmt.Fprintf(f.out, "File not found: %s (field: %s)\n", v, fld.Name)
	case errors.Is(err, ErrDropdownSelection):
		fmt.Fprintf(f.out, "Could not select value for dropdown: %s\n", fld.Name)
	default:
		fmt.Fprintf(f.out, "Could not fill %s field %s: %v\n", fld.Category, fld.Name, err)
	}
}

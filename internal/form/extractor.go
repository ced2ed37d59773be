package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/v0xg/formfill/internal/browser"
)

// DefaultTimeout bounds the wait for the first <form>
const DefaultTimeout = 10 * time.Second

// inputCategories maps input type attributes to the categories that are filled.
// Any other type is ignored.
var inputCategories = map[string]Category{
	"text":     TextInput,
	"email":    TextInput,
	"password": TextInput,
	"tel":      TextInput,
	"number":   TextInput,
	"checkbox": Checkbox,
	"file":     FileInput,
}

// Extractor reads the forms of the current page
type Extractor struct {
	session browser.Session
	timeout time.Duration
}

// NewExtractor creates an extractor. A zero timeout uses DefaultTimeout.
func NewExtractor(session browser.Session, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{session: session, timeout: timeout}
}

// Extract waits for at least one form and returns one Snapshot per form in
// document order. A page without forms fails with browser.ErrPageLoadTimeout.
func (x *Extractor) Extract(ctx context.Context) ([]Snapshot, error) {
	forms, err := x.session.WaitForForms(ctx, x.timeout)
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(forms))
	for i, f := range forms {
		snap, err := extractForm(f, i)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i+1, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func extractForm(f browser.Element, index int) (Snapshot, error) {
	snap := Snapshot{Index: index}

	inputs, err := f.Elements("input")
	if err != nil {
		return snap, fmt.Errorf("list inputs: %w", err)
	}
	for _, in := range inputs {
		typ, err := inputType(in)
		if err != nil {
			return snap, err
		}
		category, ok := inputCategories[typ]
		if !ok {
			continue
		}
		name, err := resolveName(in)
		if err != nil {
			return snap, err
		}
		snap.add(Field{
			Descriptor: Descriptor{Category: category, Name: name, Type: typ},
			Element:    in,
		})
	}

	selects, err := f.Elements("select")
	if err != nil {
		return snap, fmt.Errorf("list selects: %w", err)
	}
	for _, sel := range selects {
		name, err := resolveName(sel)
		if err != nil {
			return snap, err
		}
		snap.add(Field{
			Descriptor: Descriptor{Category: Dropdown, Name: name, Type: "select"},
			Element:    sel,
		})
	}

	return snap, nil
}

// inputType returns the lowercased type attribute; a missing one is "text"
// as in HTML.
func inputType(el browser.Element) (string, error) {
	typ, ok, err := el.Attribute("type")
	if err != nil {
		return "", fmt.Errorf("read type: %w", err)
	}
	typ = strings.ToLower(strings.TrimSpace(typ))
	if !ok || typ == "" {
		return "text", nil
	}
	return typ, nil
}

// resolveName prefers a non-empty name attribute, then id
func resolveName(el browser.Element) (string, error) {
	for _, attr := range []string{"name", "id"} {
		v, _, err := el.Attribute(attr)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", attr, err)
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/v0xg/formfill/internal/browser"
)

// Option is a <select> option
type Option struct {
	Text  string
	Value string
}

// Element is a fake DOM node. Interaction methods mutate it the way a
// browser would so tests can assert on the resulting state.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Children []*Element

	Value         string
	Checked       bool
	Options       []Option
	SelectedValue string // value of the selected option
	Files         []string

	Clicks int
	// Err, when set, is returned by every interaction method
	Err error

	// ClickErr fails Click only, as a disabled or covered control does
	ClickErr error
}

// Page returns a root element holding the given forms
func Page(children ...*Element) *Element {
	return &Element{Tag: "body", Children: children}
}

// Form returns a <form> holding the given controls
func Form(children ...*Element) *Element {
	return &Element{Tag: "form", Children: children}
}

// Input returns an <input> with the given type and name. An empty typ omits
// the attribute.
func Input(typ, name string) *Element {
	attrs := map[string]string{}
	if typ != "" {
		attrs["type"] = typ
	}
	if name != "" {
		attrs["name"] = name
	}
	return &Element{Tag: "input", Attrs: attrs}
}

// Select returns a <select> with the given options
func Select(name string, opts ...Option) *Element {
	return &Element{Tag: "select", Attrs: map[string]string{"name": name}, Options: opts}
}

// WithID sets the id attribute
func (e *Element) WithID(id string) *Element {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs["id"] = id
	return e
}

func (e *Element) Elements(tag string) ([]browser.Element, error) {
	var out []browser.Element
	var walk func(n *Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out, nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) Clear() error {
	if e.Err != nil {
		return e.Err
	}
	e.Value = ""
	return nil
}

func (e *Element) Input(text string) error {
	if e.Err != nil {
		return e.Err
	}
	e.Value += text
	return nil
}

func (e *Element) Click() error {
	if e.Err != nil {
		return e.Err
	}
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if e.Attrs["type"] == "checkbox" {
		e.Checked = !e.Checked
	}
	return nil
}

func (e *Element) Selected() (bool, error) {
	if e.Err != nil {
		return false, e.Err
	}
	return e.Checked, nil
}

func (e *Element) SelectByText(text string) error {
	if e.Err != nil {
		return e.Err
	}
	for _, o := range e.Options {
		if strings.TrimSpace(o.Text) == text {
			e.SelectedValue = o.Value
			return nil
		}
	}
	return fmt.Errorf("no option with text %q", text)
}

func (e *Element) SelectByValue(value string) error {
	if e.Err != nil {
		return e.Err
	}
	for _, o := range e.Options {
		if o.Value == value {
			e.SelectedValue = o.Value
			return nil
		}
	}
	return fmt.Errorf("no option with value %q", value)
}

func (e *Element) SetFiles(paths []string) error {
	if e.Err != nil {
		return e.Err
	}
	e.Files = append([]string(nil), paths...)
	return nil
}

// Session is a fake browser.Session serving a single static page
type Session struct {
	Root    *Element
	PageURL string

	Navigated   []string
	NavigateErr error
	Closed      bool
}

// NewSession returns a session whose page contains root
func NewSession(root *Element) *Session {
	return &Session{Root: root}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.Navigated = append(s.Navigated, url)
	s.PageURL = url
	return nil
}

// WaitForForms fails immediately with browser.ErrPageLoadTimeout when the
// page has no form instead of sleeping for timeout.
func (s *Session) WaitForForms(ctx context.Context, timeout time.Duration) ([]browser.Element, error) {
	forms, _ := s.Root.Elements("form")
	if len(forms) == 0 {
		return nil, fmt.Errorf("%w after %s", browser.ErrPageLoadTimeout, timeout)
	}
	return forms, nil
}

func (s *Session) URL() string {
	return s.PageURL
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

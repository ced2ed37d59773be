package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the browser launch
type Options struct {
	Bin         string // Browser executable, looked up when empty
	ProfileDir  string // Chrome/Chromium profile directory for authenticated sessions
	Headless    bool
	Width       int
	Height      int
	SettleDelay time.Duration // Fixed delay after navigation

	// FieldTimeout bounds every element interaction, DefaultFieldTimeout when zero
	FieldTimeout time.Duration
}

// DefaultFieldTimeout bounds a single element interaction. Rod waits for an
// element to become enabled and uncovered before typing or clicking, which
// never happens for disabled or overlaid controls.
const DefaultFieldTimeout = 5 * time.Second

// RodSession drives a Chromium page through Rod
type RodSession struct {
	browser      *rod.Browser
	page         *rod.Page
	settle       time.Duration
	fieldTimeout time.Duration
}

// Launch starts a browser and opens a blank page
func Launch(opts Options) (*RodSession, error) {
	bin := opts.Bin
	if bin == "" {
		path, found := launcher.LookPath()
		if !found {
			return nil, fmt.Errorf("browser executable path not found")
		}
		bin = path
	}

	l := launcher.New().Bin(bin).Headless(opts.Headless)
	if !opts.Headless {
		l = l.Set("start-maximized")
	}
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	fieldTimeout := opts.FieldTimeout
	if fieldTimeout <= 0 {
		fieldTimeout = DefaultFieldTimeout
	}

	return &RodSession{browser: browser, page: page, settle: opts.SettleDelay, fieldTimeout: fieldTimeout}, nil
}

// Navigate loads url, waits for the load event and then the settle delay
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load of %s: %w", url, err)
	}

	if s.settle <= 0 {
		return nil
	}
	select {
	case <-time.After(s.settle):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForForms polls for a <form> until timeout, then returns all forms
func (s *RodSession) WaitForForms(ctx context.Context, timeout time.Duration) ([]Element, error) {
	page := s.page.Context(ctx).Timeout(timeout)
	_, err := page.Element("form")
	page.CancelTimeout()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrPageLoadTimeout, timeout)
		}
		return nil, fmt.Errorf("wait for form: %w", err)
	}

	forms, err := s.page.Context(ctx).Elements("form")
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return wrapElements(forms, s.fieldTimeout), nil
}

// URL returns the current page URL, or "" if it cannot be read
func (s *RodSession) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Page returns the underlying Rod page
func (s *RodSession) Page() *rod.Page {
	return s.page
}

// Close cleans up browser resources
func (s *RodSession) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}

type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

func wrapElements(els rod.Elements, timeout time.Duration) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el, timeout: timeout})
	}
	return out
}

// do runs fn against a copy of the element bounded by the field timeout
func (e *rodElement) do(fn func(el *rod.Element) error) error {
	el := e.el.Timeout(e.timeout)
	defer el.CancelTimeout()
	return fn(el)
}

func (e *rodElement) Elements(tag string) ([]Element, error) {
	var els rod.Elements
	err := e.do(func(el *rod.Element) (err error) {
		els, err = el.Elements(tag)
		return err
	})
	if err != nil {
		return nil, err
	}
	// Children must not inherit the timeout context cancelled by do
	ctx := e.el.GetContext()
	for i, el := range els {
		els[i] = el.Context(ctx)
	}
	return wrapElements(els, e.timeout), nil
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	var v *string
	err := e.do(func(el *rod.Element) (err error) {
		v, err = el.Attribute(name)
		return err
	})
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) Clear() error {
	return e.do(func(el *rod.Element) error {
		if err := el.SelectAllText(); err != nil {
			return err
		}
		return el.Input("")
	})
}

func (e *rodElement) Input(text string) error {
	return e.do(func(el *rod.Element) error {
		return el.Input(text)
	})
}

func (e *rodElement) Click() error {
	return e.do(func(el *rod.Element) error {
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}

func (e *rodElement) Selected() (bool, error) {
	var checked bool
	err := e.do(func(el *rod.Element) error {
		prop, err := el.Property("checked")
		if err != nil {
			return err
		}
		checked = prop.Bool()
		return nil
	})
	return checked, err
}

// SelectByText matches the option's visible text exactly, ignoring surrounding whitespace
func (e *rodElement) SelectByText(text string) error {
	pattern := `^\s*` + regexp.QuoteMeta(text) + `\s*$`
	return e.do(func(el *rod.Element) error {
		return el.Select([]string{pattern}, true, rod.SelectorTypeRegex)
	})
}

func (e *rodElement) SelectByValue(value string) error {
	selector := "option[value=" + cssString(value) + "]"
	return e.do(func(el *rod.Element) error {
		return el.Select([]string{selector}, true, rod.SelectorTypeCSSSector)
	})
}

func (e *rodElement) SetFiles(paths []string) error {
	return e.do(func(el *rod.Element) error {
		return el.SetFiles(paths)
	})
}

// cssString quotes s as a CSS string token. Quotes and backslashes are
// backslash-escaped, control characters become hex escapes.
func cssString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == 0:
			b.WriteString("\\fffd ")
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

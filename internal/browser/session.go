package browser

import (
	"context"
	"errors"
	"time"
)

// ErrPageLoadTimeout is returned when no <form> appears within the wait budget.
var ErrPageLoadTimeout = errors.New("page load timeout: no form found")

// Session is a single live browser page
type Session interface {
	// Navigate opens url and waits for the page to settle
	Navigate(ctx context.Context, url string) error
	// WaitForForms blocks until at least one <form> is present, then returns
	// every form on the page in document order
	WaitForForms(ctx context.Context, timeout time.Duration) ([]Element, error)
	// URL returns the address of the currently loaded page
	URL() string
	Close() error
}

// Element is a handle to a live DOM element. It is only valid for the page
// load it was obtained from.
type Element interface {
	// Elements returns descendants with the given tag name in document order
	Elements(tag string) ([]Element, error)
	// Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool, error)
	Clear() error
	Input(text string) error
	Click() error
	// Selected reports the checked state of a checkbox
	Selected() (bool, error)
	SelectByText(text string) error
	SelectByValue(value string) error
	SetFiles(paths []string) error
}

package form

import "github.com/v0xg/formfill/internal/browser"

// Category classifies a form control by how it is filled
type Category int

const (
	TextInput Category = iota
	Checkbox
	Dropdown
	FileInput
)

func (c Category) String() string {
	switch c {
	case TextInput:
		return "text"
	case Checkbox:
		return "checkbox"
	case Dropdown:
		return "dropdown"
	case FileInput:
		return "file"
	default:
		return "unknown"
	}
}

// Descriptor is the durable description of a form control. It never holds
// page state and is safe to keep after the page is gone.
type Descriptor struct {
	Category Category `json:"category"`
	Name     string   `json:"name,omitempty"` // name attribute, falling back to id
	Type     string   `json:"type"`           // raw input type, "select" for dropdowns
}

// Named reports whether the control can be stored and matched
func (d Descriptor) Named() bool {
	return d.Name != ""
}

// DisplayName returns the name or a placeholder for unnamed controls
func (d Descriptor) DisplayName() string {
	if d.Name == "" {
		return "(unnamed)"
	}
	return d.Name
}

// Field pairs a Descriptor with the live element it was read from
type Field struct {
	Descriptor
	Element browser.Element `json:"-"`
}

// Snapshot holds the fields of one <form>, bucketed by category
type Snapshot struct {
	Index      int // zero-based position of the form in the document
	TextInputs []Field
	Dropdowns  []Field
	Checkboxes []Field
	FileInputs []Field
}

// Fields returns every field in bucket order: text inputs, dropdowns,
// checkboxes, file inputs. Each bucket keeps document order.
func (s Snapshot) Fields() []Field {
	out := make([]Field, 0, s.Len())
	out = append(out, s.TextInputs...)
	out = append(out, s.Dropdowns...)
	out = append(out, s.Checkboxes...)
	out = append(out, s.FileInputs...)
	return out
}

// Len returns the total number of fields
func (s Snapshot) Len() int {
	return len(s.TextInputs) + len(s.Dropdowns) + len(s.Checkboxes) + len(s.FileInputs)
}

// Descriptors strips live handles from the snapshot
func (s Snapshot) Descriptors() []Descriptor {
	fields := s.Fields()
	out := make([]Descriptor, len(fields))
	for i, f := range fields {
		out[i] = f.Descriptor
	}
	return out
}

func (s *Snapshot) add(f Field) {
	switch f.Category {
	case TextInput:
		s.TextInputs = append(s.TextInputs, f)
	case Checkbox:
		s.Checkboxes = append(s.Checkboxes, f)
	case Dropdown:
		s.Dropdowns = append(s.Dropdowns, f)
	case FileInput:
		s.FileInputs = append(s.FileInputs, f)
	}
}

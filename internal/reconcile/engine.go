// Package reconcile makes sure every detected field has an answer, asking the
// user for the ones the store does not know yet.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/formfill/internal/form"
	"github.com/v0xg/formfill/internal/store"
)

// Policy decides when missing answers are asked for
type Policy int

const (
	// PromptMissing asks for every field whose key is not stored
	PromptMissing Policy = iota
	// PromptWhenEmpty only asks when the store was empty at start, and
	// otherwise leaves unknown fields unfilled
	PromptWhenEmpty
)

// ParsePolicy converts "missing" or "empty-store" to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "missing":
		return PromptMissing, nil
	case "empty-store":
		return PromptWhenEmpty, nil
	default:
		return PromptMissing, fmt.Errorf("unknown prompt policy %q (supported: missing, empty-store)", s)
	}
}

// Prompter asks the user for answers. Calls block until the user responds.
type Prompter interface {
	// Text asks for free text; an empty answer returns suggestion
	Text(ctx context.Context, label, suggestion string) (string, error)
	// Path asks for a file-system path
	Path(ctx context.Context, label string) (string, error)
	// Confirm asks a yes/no question
	Confirm(ctx context.Context, label string) (bool, error)
}

// Suggester proposes default answers for text and dropdown fields, keyed by field name
type Suggester interface {
	Suggest(ctx context.Context, pageURL string, fields []form.Descriptor) (map[string]string, error)
}

// Result summarizes a reconciliation pass
type Result struct {
	Prompted []string // keys answered interactively, in prompt order
	Known    int      // fields whose key was already stored
	Skipped  int      // unnamed fields, or unknown fields under PromptWhenEmpty
	Saved    bool
}

// Engine reconciles snapshots against a store
type Engine struct {
	store     *store.Store
	prompter  Prompter
	policy    Policy
	scope     store.Scope
	suggester Suggester
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithScope(sc store.Scope) Option {
	return func(e *Engine) { e.scope = sc }
}

func WithSuggester(s Suggester) Option {
	return func(e *Engine) { e.suggester = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine that prompts through p and records answers in st
func New(st *store.Store, p Prompter, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		prompter: p,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pending struct {
	key   string
	field form.Descriptor
}

// Reconcile walks every field of every snapshot. Fields with a stored key are
// left for the filler; others are asked for once and stored. The store is
// saved once after the last answer, and only if something was added.
func (e *Engine) Reconcile(ctx context.Context, pageURL string, snapshots []form.Snapshot) (Result, error) {
	var res Result
	allowPrompt := e.policy == PromptMissing || e.store.Len() == 0

	var todo []pending
	queued := make(map[string]bool)
	for _, snap := range snapshots {
		for _, d := range snap.Descriptors() {
			if !d.Named() {
				res.Skipped++
				continue
			}
			key := e.scope.Key(pageURL, snap.Index, d.Name)
			switch {
			case e.store.Has(key):
				res.Known++
			case queued[key]:
				// Same key twice on one page: answered once, filled twice.
				res.Known++
			case !allowPrompt:
				res.Skipped++
				e.logger.Debug("Not prompting for unknown field", zap.String("key", key))
			default:
				queued[key] = true
				todo = append(todo, pending{key: key, field: d})
			}
		}
	}

	if len(todo) == 0 {
		return res, nil
	}

	suggestions := e.suggest(ctx, pageURL, todo)

	for _, p := range todo {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v, err := e.ask(ctx, p.field, suggestions[p.field.Name])
		if err != nil {
			return res, fmt.Errorf("prompt for %s: %w", p.field.Name, err)
		}
		e.store.Set(p.key, v)
		res.Prompted = append(res.Prompted, p.key)
		e.logger.Debug("Stored answer",
			zap.String("key", p.key),
			zap.String("category", p.field.Category.String()))
	}

	if err := e.store.Save(); err != nil {
		return res, fmt.Errorf("save store: %w", err)
	}
	res.Saved = true
	e.logger.Info("Saved answers",
		zap.String("path", e.store.Path()),
		zap.Int("added", len(res.Prompted)),
		zap.Int("total", e.store.Len()))
	return res, nil
}

func (e *Engine) ask(ctx context.Context, d form.Descriptor, suggestion string) (store.Value, error) {
	switch d.Category {
	case form.Checkbox:
		b, err := e.prompter.Confirm(ctx, fmt.Sprintf("Check %s?", d.Name))
		if err != nil {
			return store.Value{}, err
		}
		return store.Bool(b), nil
	case form.FileInput:
		s, err := e.prompter.Path(ctx, fmt.Sprintf("Enter file path for %s", d.Name))
		if err != nil {
			return store.Value{}, err
		}
		return store.String(s), nil
	default:
		s, err := e.prompter.Text(ctx, fmt.Sprintf("Enter value for %s", d.Name), suggestion)
		if err != nil {
			return store.Value{}, err
		}
		return store.String(s), nil
	}
}

// suggest asks the suggester for text and dropdown defaults. Failures are
// logged and yield no suggestions.
func (e *Engine) suggest(ctx context.Context, pageURL string, todo []pending) map[string]string {
	if e.suggester == nil {
		return nil
	}

	var fields []form.Descriptor
	for _, p := range todo {
		if p.field.Category == form.TextInput || p.field.Category == form.Dropdown {
			fields = append(fields, p.field)
		}
	}
	if len(fields) == 0 {
		return nil
	}

	suggestions, err := e.suggester.Suggest(ctx, pageURL, fields)
	if err != nil {
		e.logger.Warn("Could not get suggestions", zap.Error(err))
		return nil
	}
	return suggestions
}

package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/v0xg/formfill/internal/form"
	"github.com/v0xg/formfill/internal/store"
)

const pageURL = "https://example.com/signup"

// scriptedPrompter answers from fixed maps and records every label it was shown
type scriptedPrompter struct {
	text    map[string]string
	paths   map[string]string
	confirm map[string]bool
	err     error

	labels      []string
	suggestions []string
}

func (p *scriptedPrompter) Text(ctx context.Context, label, suggestion string) (string, error) {
	p.labels = append(p.labels, label)
	p.suggestions = append(p.suggestions, suggestion)
	if p.err != nil {
		return "", p.err
	}
	if v, ok := p.text[label]; ok {
		return v, nil
	}
	return suggestion, nil
}

func (p *scriptedPrompter) Path(ctx context.Context, label string) (string, error) {
	p.labels = append(p.labels, label)
	if p.err != nil {
		return "", p.err
	}
	return p.paths[label], nil
}

func (p *scriptedPrompter) Confirm(ctx context.Context, label string) (bool, error) {
	p.labels = append(p.labels, label)
	if p.err != nil {
		return false, p.err
	}
	return p.confirm[label], nil
}

type stubSuggester struct {
	got  []form.Descriptor
	out  map[string]string
	err  error
	hits int
}

func (s *stubSuggester) Suggest(ctx context.Context, pageURL string, fields []form.Descriptor) (map[string]string, error) {
	s.hits++
	s.got = fields
	return s.out, s.err
}

func field(c form.Category, name string) form.Field {
	return form.Field{Descriptor: form.Descriptor{Category: c, Name: name}}
}

func signupSnapshot() form.Snapshot {
	return form.Snapshot{
		TextInputs: []form.Field{field(form.TextInput, "username")},
		Dropdowns:  []form.Field{field(form.Dropdown, "country")},
		Checkboxes: []form.Field{field(form.Checkbox, "terms")},
		FileInputs: []form.Field{field(form.FileInput, "resume")},
	}
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "form_data.json"))
}

func TestReconcilePromptsForEveryCategory(t *testing.T) {
	st := newStore(t)
	p := &scriptedPrompter{
		text: map[string]string{
			"Enter value for username": "alice",
			"Enter value for country":  "France",
		},
		paths:   map[string]string{"Enter file path for resume": "~/cv.pdf"},
		confirm: map[string]bool{"Check terms?": true},
	}

	res, err := New(st, p).Reconcile(context.Background(), pageURL, []form.Snapshot{signupSnapshot()})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Enter value for username",
		"Enter value for country",
		"Check terms?",
		"Enter file path for resume",
	}, p.labels)
	assert.Equal(t, []string{"username", "country", "terms", "resume"}, res.Prompted)
	assert.True(t, res.Saved)

	loaded, err := store.Load(st.Path())
	require.NoError(t, err)

	username, _ := loaded.Get("username")
	assert.Equal(t, store.String("alice"), username)
	terms, _ := loaded.Get("terms")
	assert.Equal(t, store.Bool(true), terms)
	resume, _ := loaded.Get("resume")
	assert.Equal(t, store.String("~/cv.pdf"), resume)
}

func TestReconcileSkipsStoredKeys(t *testing.T) {
	st := newStore(t)
	st.Set("username", store.String("bob"))
	st.Set("terms", store.Bool(false))
	p := &scriptedPrompter{}

	res, err := New(st, p).Reconcile(context.Background(), pageURL, []form.Snapshot{{
		TextInputs: []form.Field{field(form.TextInput, "username"), field(form.TextInput, "email")},
		Checkboxes: []form.Field{field(form.Checkbox, "terms")},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Enter value for email"}, p.labels)
	assert.Equal(t, 2, res.Known)

	v, _ := st.Get("username")
	assert.Equal(t, store.String("bob"), v, "stored answers are never overwritten")
}

func TestReconcilePromptsOncePerKey(t *testing.T) {
	st := newStore(t)
	p := &scriptedPrompter{text: map[string]string{"Enter value for email": "a@b.c"}}

	snaps := []form.Snapshot{
		{Index: 0, TextInputs: []form.Field{field(form.TextInput, "email")}},
		{Index: 1, TextInputs: []form.Field{field(form.TextInput, "email")}},
	}
	res, err := New(st, p).Reconcile(context.Background(), pageURL, snaps)
	require.NoError(t, err)

	assert.Len(t, p.labels, 1)
	assert.Equal(t, 1, res.Known)

	// A second pass over the same page asks nothing.
	p.labels = nil
	res, err = New(st, p).Reconcile(context.Background(), pageURL, snaps)
	require.NoError(t, err)
	assert.Empty(t, p.labels)
	assert.False(t, res.Saved)
}

func TestReconcileFormScopeSeparatesForms(t *testing.T) {
	st := newStore(t)
	p := &scriptedPrompter{}

	snaps := []form.Snapshot{
		{Index: 0, TextInputs: []form.Field{field(form.TextInput, "email")}},
		{Index: 1, TextInputs: []form.Field{field(form.TextInput, "email")}},
	}
	res, err := New(st, p, WithScope(store.ScopeForm)).Reconcile(context.Background(), pageURL, snaps)
	require.NoError(t, err)

	assert.Len(t, p.labels, 2)
	assert.Equal(t, []string{"https://example.com#0/email", "https://example.com#1/email"}, res.Prompted)
}

func TestReconcileEmptyStorePolicy(t *testing.T) {
	snaps := []form.Snapshot{{TextInputs: []form.Field{field(form.TextInput, "username")}}}

	t.Run("non-empty store asks nothing", func(t *testing.T) {
		st := newStore(t)
		st.Set("other", store.String("x"))
		p := &scriptedPrompter{}

		res, err := New(st, p, WithPolicy(PromptWhenEmpty)).Reconcile(context.Background(), pageURL, snaps)
		require.NoError(t, err)
		assert.Empty(t, p.labels)
		assert.Equal(t, 1, res.Skipped)
		assert.False(t, st.Has("username"))
	})

	t.Run("empty store asks", func(t *testing.T) {
		st := newStore(t)
		p := &scriptedPrompter{}

		_, err := New(st, p, WithPolicy(PromptWhenEmpty)).Reconcile(context.Background(), pageURL, snaps)
		require.NoError(t, err)
		assert.Len(t, p.labels, 1)
	})
}

func TestReconcileSkipsUnnamedFields(t *testing.T) {
	st := newStore(t)
	p := &scriptedPrompter{}

	res, err := New(st, p).Reconcile(context.Background(), pageURL, []form.Snapshot{{
		TextInputs: []form.Field{field(form.TextInput, "")},
	}})
	require.NoError(t, err)
	assert.Empty(t, p.labels)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, st.Len())
}

func TestReconcilePrompterErrorIsReturned(t *testing.T) {
	st := newStore(t)
	boom := errors.New("stdin closed")
	p := &scriptedPrompter{err: boom}

	_, err := New(st, p).Reconcile(context.Background(), pageURL, []form.Snapshot{signupSnapshot()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.NoFileExists(t, st.Path(), "nothing is saved when prompting fails")
}

func TestReconcileUsesSuggestions(t *testing.T) {
	st := newStore(t)
	p := &scriptedPrompter{}
	sg := &stubSuggester{out: map[string]string{"username": "alice", "country": "France"}}

	_, err := New(st, p, WithSuggester(sg)).Reconcile(context.Background(), pageURL, []form.Snapshot{signupSnapshot()})
	require.NoError(t, err)

	assert.Equal(t, 1, sg.hits)
	require.Len(t, sg.got, 2, "only text and dropdown fields get suggestions")
	assert.Equal(t, "username", sg.got[0].Name)
	assert.Equal(t, "country", sg.got[1].Name)
	assert.Equal(t, []string{"alice", "France"}, p.suggestions)

	v, _ := st.Get("username")
	assert.Equal(t, store.String("alice"), v)
}

func TestReconcileSuggesterFailureIsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	st := newStore(t)
	p := &scriptedPrompter{text: map[string]string{"Enter value for username": "alice"}}
	sg := &stubSuggester{err: errors.New("rate limited")}

	_, err := New(st, p, WithSuggester(sg), WithLogger(zap.New(core))).
		Reconcile(context.Background(), pageURL, []form.Snapshot{{
			TextInputs: []form.Field{field(form.TextInput, "username")},
		}})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("Could not get suggestions").Len())
	v, _ := st.Get("username")
	assert.Equal(t, store.String("alice"), v)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PromptMissing, p)

	p, err = ParsePolicy("empty-store")
	require.NoError(t, err)
	assert.Equal(t, PromptWhenEmpty, p)

	_, err = ParsePolicy("always")
	assert.Error(t, err)
}

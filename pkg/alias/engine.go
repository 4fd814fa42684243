package alias

import (
	"context"
	"slices"
	"time"

	"github.com/jlrickert/ekr/pkg/frontmatter"
	"github.com/jlrickert/ekr/pkg/hangul"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/markdown"
	"github.com/jlrickert/ekr/pkg/vault"
	"gopkg.in/yaml.v3"
)

// Op names an engine operation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Observer is notified after every single-document operation. count is the
// number of aliases added or removed. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveDocument(op Op, doc vault.Document, count int, err error, elapsed time.Duration)
}

// AddResult is the outcome of adding aliases to one document.
type AddResult struct {
	Added int `json:"added" yaml:"added" toml:"added"`
}

// RemoveResult is the outcome of removing generated aliases from one
// document.
type RemoveResult struct {
	Removed int `json:"removed" yaml:"removed" toml:"removed"`
}

// Engine adds and removes generated aliases on documents in a Store.
type Engine struct {
	Store vault.Store

	encode        func(string) string
	dryRun        bool
	concurrency   int
	headingSource bool
	observer      Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDryRun computes results without writing documents.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

// WithConcurrency lets batch operations process up to n documents at once.
// Results are identical to a sequential run. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithHeadingSource adds the note's first level-one heading as an alias
// source, right after the basename.
func WithHeadingSource(enabled bool) Option {
	return func(e *Engine) { e.headingSource = enabled }
}

// WithObserver registers o to be told about every document processed.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithEncoder replaces the transliteration function.
func WithEncoder(fn func(string) string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.encode = fn
		}
	}
}

// New returns an Engine working on store.
func New(store vault.Store, opts ...Option) *Engine {
	e := &Engine{
		Store:       store,
		encode:      hangul.Encode,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// DryRun reports whether the engine skips writes.
func (e *Engine) DryRun() bool { return e.dryRun }

// Add regenerates the tagged aliases of doc from its basename and its
// hand-written aliases.
func (e *Engine) Add(ctx context.Context, doc vault.Document) (AddResult, error) {
	start := time.Now()
	res, err := e.add(ctx, doc)
	e.observe(OpAdd, doc, res.Added, err, start)
	return res, err
}

func (e *Engine) add(ctx context.Context, doc vault.Document) (AddResult, error) {
	if err := checkMarkdown(doc); err != nil {
		return AddResult{}, err
	}
	lg := log.FromContext(ctx).With("op", OpAdd, "path", doc.Path)

	text, err := e.Store.ReadText(ctx, doc)
	if err != nil {
		return AddResult{}, err
	}

	parsed := frontmatter.Decode(text)
	if parsed.Malformed {
		lg.Warn("frontmatter is not a yaml mapping; it will be replaced")
	}

	stored, canonical := storedAliases(parsed.Fields)
	cleaned := Clean(stored)

	candidates := []string{doc.Basename()}
	if e.headingSource {
		candidates = append(candidates, markdown.Title(parsed.Body))
	}
	sources := appendSources(nil, append(candidates, cleaned...)...)
	if len(sources) == 0 {
		lg.Debug("no alias sources")
		return AddResult{}, nil
	}

	generated := make([]string, len(sources))
	for i, src := range sources {
		generated[i] = FormatAlias(src, e.encode(src))
	}

	next := append(slices.Clip(cleaned), generated...)
	if canonical && slices.Equal(next, stored) {
		lg.Debug("aliases up to date")
		return AddResult{}, nil
	}

	parsed.Fields.SetStrings(Key, next)
	if err := e.write(ctx, doc, parsed); err != nil {
		return AddResult{}, err
	}
	lg.Debug("aliases added", "count", len(generated), "dry_run", e.dryRun)
	return AddResult{Added: len(generated)}, nil
}

// Remove strips every tagged alias from doc. The aliases key is dropped when
// nothing remains.
func (e *Engine) Remove(ctx context.Context, doc vault.Document) (RemoveResult, error) {
	start := time.Now()
	res, err := e.remove(ctx, doc)
	e.observe(OpRemove, doc, res.Removed, err, start)
	return res, err
}

func (e *Engine) remove(ctx context.Context, doc vault.Document) (RemoveResult, error) {
	if err := checkMarkdown(doc); err != nil {
		return RemoveResult{}, err
	}
	lg := log.FromContext(ctx).With("op", OpRemove, "path", doc.Path)

	text, err := e.Store.ReadText(ctx, doc)
	if err != nil {
		return RemoveResult{}, err
	}

	parsed := frontmatter.Decode(text)
	stored, _ := storedAliases(parsed.Fields)
	cleaned := Clean(stored)

	removed := len(stored) - len(cleaned)
	if removed == 0 {
		lg.Debug("no generated aliases")
		return RemoveResult{}, nil
	}

	if len(cleaned) == 0 {
		parsed.Fields.Delete(Key)
	} else {
		parsed.Fields.SetStrings(Key, cleaned)
	}
	if err := e.write(ctx, doc, parsed); err != nil {
		return RemoveResult{}, err
	}
	lg.Debug("aliases removed", "count", removed, "dry_run", e.dryRun)
	return RemoveResult{Removed: removed}, nil
}

func (e *Engine) write(ctx context.Context, doc vault.Document, parsed *frontmatter.Parsed) error {
	out, err := parsed.Encode()
	if err != nil {
		return err
	}
	if e.dryRun {
		return nil
	}
	return e.Store.WriteText(ctx, doc, out)
}

func (e *Engine) observe(op Op, doc vault.Document, count int, err error, start time.Time) {
	if e.observer != nil {
		e.observer.ObserveDocument(op, doc, count, err, time.Since(start))
	}
}

func checkMarkdown(doc vault.Document) error {
	if !doc.IsMarkdown() {
		return &UnsupportedDocumentError{Path: doc.Path, Ext: doc.Ext()}
	}
	return nil
}

// storedAliases returns the normalized aliases of fields. canonical is true
// when the stored value is already a sequence made only of strings.
func storedAliases(fields *frontmatter.Fields) (aliases []string, canonical bool) {
	raw, _ := fields.Get(Key)
	aliases = NormalizeAliases(raw)

	node := fields.Node(Key)
	if node == nil || node.Kind != yaml.SequenceNode {
		return aliases, false
	}
	for _, item := range node.Content {
		if item == nil || item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return aliases, false
		}
	}
	return aliases, true
}

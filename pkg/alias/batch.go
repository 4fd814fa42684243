package alias

import (
	"context"
	"fmt"
	"sync"

	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/vault"
)

// DocumentError records a document that failed during a batch.
type DocumentError struct {
	Path    string `json:"path" yaml:"path" toml:"path"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

// BatchResult aggregates the outcome of a batch operation. Errors appear in
// the order the documents were listed.
type BatchResult struct {
	Operation      Op              `json:"operation" yaml:"operation" toml:"operation"`
	DryRun         bool            `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty"`
	FilesProcessed int             `json:"files_processed" yaml:"files_processed" toml:"files_processed"`
	FilesUpdated   int             `json:"files_updated" yaml:"files_updated" toml:"files_updated"`
	AliasesAdded   int             `json:"aliases_added,omitempty" yaml:"aliases_added,omitempty" toml:"aliases_added,omitempty"`
	AliasesRemoved int             `json:"aliases_removed,omitempty" yaml:"aliases_removed,omitempty" toml:"aliases_removed,omitempty"`
	Errors         []DocumentError `json:"errors" yaml:"errors" toml:"errors"`
}

// Documents lists the markdown notes in scope.
func (e *Engine) Documents(ctx context.Context, scope vault.Scope) ([]vault.Document, error) {
	docs, err := e.Store.List(ctx, scope)
	if err != nil {
		if scope.IsVault() {
			return nil, fmt.Errorf("list vault: %w", err)
		}
		return nil, fmt.Errorf("list folder %q: %w", scope.Folder, err)
	}
	return vault.MarkdownOnly(docs), nil
}

// AddFolder adds aliases to every markdown note under folder, recursively.
func (e *Engine) AddFolder(ctx context.Context, folder string) (BatchResult, error) {
	return e.addScope(ctx, vault.FolderScope(folder))
}

// AddVault adds aliases to every markdown note in the store.
func (e *Engine) AddVault(ctx context.Context) (BatchResult, error) {
	return e.addScope(ctx, vault.VaultScope())
}

// RemoveFolder strips generated aliases from every markdown note under
// folder, recursively.
func (e *Engine) RemoveFolder(ctx context.Context, folder string) (BatchResult, error) {
	return e.removeScope(ctx, vault.FolderScope(folder))
}

// RemoveVault strips generated aliases from every markdown note in the
// store.
func (e *Engine) RemoveVault(ctx context.Context) (BatchResult, error) {
	return e.removeScope(ctx, vault.VaultScope())
}

func (e *Engine) addScope(ctx context.Context, scope vault.Scope) (BatchResult, error) {
	docs, err := e.Documents(ctx, scope)
	if err != nil {
		return BatchResult{Operation: OpAdd, Errors: []DocumentError{}}, err
	}
	return e.AddAll(ctx, docs), nil
}

func (e *Engine) removeScope(ctx context.Context, scope vault.Scope) (BatchResult, error) {
	docs, err := e.Documents(ctx, scope)
	if err != nil {
		return BatchResult{Operation: OpRemove, Errors: []DocumentError{}}, err
	}
	return e.RemoveAll(ctx, docs), nil
}

// AddAll runs Add on each document. A failing document is recorded in
// Errors and never stops the batch.
func (e *Engine) AddAll(ctx context.Context, docs []vault.Document) BatchResult {
	return e.run(ctx, OpAdd, docs, func(ctx context.Context, doc vault.Document) (int, error) {
		res, err := e.Add(ctx, doc)
		return res.Added, err
	})
}

// RemoveAll runs Remove on each document. A failing document is recorded in
// Errors and never stops the batch.
func (e *Engine) RemoveAll(ctx context.Context, docs []vault.Document) BatchResult {
	return e.run(ctx, OpRemove, docs, func(ctx context.Context, doc vault.Document) (int, error) {
		res, err := e.Remove(ctx, doc)
		return res.Removed, err
	})
}

type outcome struct {
	count int
	err   error
}

func (e *Engine) run(
	ctx context.Context,
	op Op,
	docs []vault.Document,
	fn func(context.Context, vault.Document) (int, error),
) BatchResult {
	outcomes := make([]outcome, len(docs))

	if e.concurrency <= 1 || len(docs) < 2 {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				continue
			}
			outcomes[i].count, outcomes[i].err = fn(ctx, doc)
		}
	} else {
		sem := make(chan struct{}, e.concurrency)
		var wg sync.WaitGroup
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				continue
			}
			sem <- struct{}{} // block if at worker capacity
			wg.Add(1)
			go func(i int, doc vault.Document) {
				defer func() {
					<-sem
					wg.Done()
				}()
				outcomes[i].count, outcomes[i].err = fn(ctx, doc)
			}(i, doc)
		}
		wg.Wait()
	}

	lg := log.FromContext(ctx)
	res := BatchResult{
		Operation:      op,
		DryRun:         e.dryRun,
		FilesProcessed: len(docs),
		Errors:         []DocumentError{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			lg.Warn("document failed", "op", op, "path", docs[i].Path, "error", o.err)
			res.Errors = append(res.Errors, DocumentError{Path: docs[i].Path, Message: o.err.Error()})
			continue
		}
		if o.count == 0 {
			continue
		}
		res.FilesUpdated++
		switch op {
		case OpAdd:
			res.AliasesAdded += o.count
		case OpRemove:
			res.AliasesRemoved += o.count
		}
	}
	lg.Info("batch finished",
		"op", op,
		"processed", res.FilesProcessed,
		"updated", res.FilesUpdated,
		"errors", len(res.Errors),
	)
	return res
}

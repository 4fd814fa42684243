package vault

import "context"

// Store is the document collection the alias engine reads from and writes
// to. Implementations must be safe for concurrent use when the engine runs
// with more than one worker.
type Store interface {
	// List returns the documents in scope in a stable order. Listing a folder
	// that does not exist returns an error wrapping ErrNotExist.
	List(ctx context.Context, scope Scope) ([]Document, error)

	// ReadText returns the full text of doc.
	ReadText(ctx context.Context, doc Document) (string, error)

	// WriteText replaces the full text of doc.
	WriteText(ctx context.Context, doc Document, text string) error
}

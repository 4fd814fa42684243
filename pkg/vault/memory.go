package vault

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store intended for tests and for serving
// scratch vaults (for example over MCP) without touching disk.
//
// MemoryStore is safe for concurrent use. Folders exist implicitly while at
// least one document lives under them.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]string
	writes int
}

// NewMemoryStore constructs a store seeded with files, keyed by
// vault-relative path.
func NewMemoryStore(files map[string]string) *MemoryStore {
	s := &MemoryStore{docs: make(map[string]string, len(files))}
	for p, text := range files {
		s.docs[CleanPath(p)] = text
	}
	return s
}

func (s *MemoryStore) Name() string { return "memory" }

// List returns documents in scope sorted by path.
func (s *MemoryStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		if scope.Contains(p) && p != scope.Folder {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 && !scope.IsVault() {
		return nil, NewBackendError(s.Name(), "List", scope.Folder, ErrNotExist)
	}
	sort.Strings(paths)

	docs := make([]Document, len(paths))
	for i, p := range paths {
		docs[i] = Document{Path: p}
	}
	return docs, nil
}

// ReadText returns the stored text for doc.
func (s *MemoryStore) ReadText(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.docs[CleanPath(doc.Path)]
	if !ok {
		return "", NewBackendError(s.Name(), "ReadText", doc.Path, ErrNotExist)
	}
	return text, nil
}

// WriteText stores text for doc, creating the document when absent.
func (s *MemoryStore) WriteText(ctx context.Context, doc Document, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := CleanPath(doc.Path)
	if p == "." {
		return NewBackendError(s.Name(), "WriteText", doc.Path, ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[p] = text
	s.writes++
	return nil
}

// Get returns the text stored at p.
func (s *MemoryStore) Get(p string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[CleanPath(p)]
	return text, ok
}

// Writes returns how many successful WriteText calls the store has seen.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

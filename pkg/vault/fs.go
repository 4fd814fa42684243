package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// FsStore implements Store on an afero filesystem rooted at a vault
// directory.
//
// Directories whose name starts with "." (.obsidian, .git, .trash) and any
// directory named in IgnoreDirs are skipped when listing. Writes go to a
// temporary file in the same folder which is then renamed over the target.
type FsStore struct {
	// Fs is the filesystem holding the vault.
	Fs afero.Fs
	// Root is the vault directory on Fs.
	Root string
	// IgnoreDirs lists extra directory names skipped while listing.
	IgnoreDirs []string
}

// FsOption configures an FsStore.
type FsOption func(*FsStore)

// WithIgnoreDirs skips directories with the given names while listing.
func WithIgnoreDirs(names ...string) FsOption {
	return func(s *FsStore) {
		s.IgnoreDirs = append(s.IgnoreDirs, names...)
	}
}

// NewFsStore returns a store for the vault at root on fsys.
func NewFsStore(fsys afero.Fs, root string, opts ...FsOption) *FsStore {
	s := &FsStore{Fs: fsys, Root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FsStore) Name() string { return "fs" }

func (s *FsStore) abs(p string) string {
	return filepath.Join(s.Root, filepath.FromSlash(CleanPath(p)))
}

// List walks the scope and returns every regular file in lexical order.
func (s *FsStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	start := s.Root
	if !scope.IsVault() {
		start = s.abs(scope.Folder)
	}

	info, err := s.Fs.Stat(start)
	if err != nil {
		return nil, NewBackendError(s.Name(), "List", scope.Folder, err)
	}
	if !info.IsDir() {
		return nil, NewBackendError(s.Name(), "List", scope.Folder,
			fmt.Errorf("not a folder: %w", ErrInvalid))
	}

	var docs []Document
	err = afero.Walk(s.Fs, start, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if fi.IsDir() {
			if p != start && s.skipDir(fi.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, NewBackendError(s.Name(), "List", scope.Folder, err)
	}
	return docs, nil
}

func (s *FsStore) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(s.IgnoreDirs, name)
}

// Ignored reports whether a vault-relative path lies inside a skipped
// directory.
func (s *FsStore) Ignored(p string) bool {
	dir := path.Dir(CleanPath(p))
	for _, part := range strings.Split(dir, "/") {
		if part != "." && part != "" && s.skipDir(part) {
			return true
		}
	}
	return false
}

// ReadText returns the content of doc.
func (s *FsStore) ReadText(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.Fs, s.abs(doc.Path))
	if err != nil {
		return "", NewBackendError(s.Name(), "ReadText", doc.Path, err)
	}
	return string(data), nil
}

// WriteText atomically replaces the content of doc. The file mode of an
// existing document is kept.
func (s *FsStore) WriteText(ctx context.Context, doc Document, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if CleanPath(doc.Path) == "." {
		return NewBackendError(s.Name(), "WriteText", doc.Path, ErrInvalid)
	}

	target := s.abs(doc.Path)
	mode := os.FileMode(0o644)
	if fi, err := s.Fs.Stat(target); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := afero.TempFile(s.Fs, filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return NewBackendError(s.Name(), "WriteText", doc.Path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = s.Fs.Remove(tmpName)
		return NewBackendError(s.Name(), "WriteText", doc.Path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.Fs.Remove(tmpName)
		return NewBackendError(s.Name(), "WriteText", doc.Path, err)
	}
	if err := s.Fs.Chmod(tmpName, mode); err != nil {
		_ = s.Fs.Remove(tmpName)
		return NewBackendError(s.Name(), "WriteText", doc.Path, err)
	}
	if err := s.Fs.Rename(tmpName, target); err != nil {
		_ = s.Fs.Remove(tmpName)
		return NewBackendError(s.Name(), "WriteText", doc.Path, err)
	}
	return nil
}

// Package vault describes the note collection the alias engine works on:
// documents addressed by vault-relative paths, the scopes they are listed by
// and the Store contract with its in-memory and filesystem implementations.
package vault

import (
	"path"
	"strings"
)

// MarkdownExt is the only extension treated as a markdown note.
const MarkdownExt = "md"

// Document identifies a file in the vault by its slash separated path
// relative to the vault root, for example "journal/2024/한글.md".
type Document struct {
	Path string
}

// NewDocument returns a Document for p after cleaning it into canonical
// vault-relative form.
func NewDocument(p string) Document {
	return Document{Path: CleanPath(p)}
}

// Name returns the final path element including its extension.
func (d Document) Name() string {
	return path.Base(d.Path)
}

// Ext returns the extension without the leading dot, or "" when the name has
// none.
func (d Document) Ext() string {
	return strings.TrimPrefix(path.Ext(d.Name()), ".")
}

// Basename returns the name with its final extension removed.
func (d Document) Basename() string {
	name := d.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Dir returns the containing folder, "." for documents at the vault root.
func (d Document) Dir() string {
	return path.Dir(d.Path)
}

// IsMarkdown reports whether the document is a markdown note.
func (d Document) IsMarkdown() bool {
	return d.Ext() == MarkdownExt
}

func (d Document) String() string { return d.Path }

// Scope selects the documents returned by Store.List.
type Scope struct {
	// Folder is the vault-relative folder to list recursively. Empty means the
	// whole vault.
	Folder string
}

// VaultScope selects every document in the vault.
func VaultScope() Scope { return Scope{} }

// FolderScope selects every document under folder, recursively.
func FolderScope(folder string) Scope {
	f := CleanPath(folder)
	if f == "." {
		f = ""
	}
	return Scope{Folder: f}
}

// IsVault reports whether the scope covers the whole vault.
func (s Scope) IsVault() bool { return s.Folder == "" }

// Contains reports whether p lies inside the scope.
func (s Scope) Contains(p string) bool {
	if s.IsVault() {
		return true
	}
	return p == s.Folder || strings.HasPrefix(p, s.Folder+"/")
}

// CleanPath converts p to the canonical vault-relative form: forward slashes,
// no leading "/" or "./", no "." or ".." elements.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// MarkdownOnly filters docs down to markdown notes, keeping their order.
func MarkdownOnly(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.IsMarkdown() {
			out = append(out, d)
		}
	}
	return out
}

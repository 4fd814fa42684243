package alias

import (
	"errors"
	"fmt"
)

// ErrUnsupportedDocument is returned for documents that are not markdown
// notes.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// UnsupportedDocumentError carries the rejected document for callers that
// need richer diagnostic information.
type UnsupportedDocumentError struct {
	Path string
	Ext  string
}

func (e *UnsupportedDocumentError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: %s has no extension", ErrUnsupportedDocument, e.Path)
	}
	return fmt.Sprintf("%s: %s (.%s)", ErrUnsupportedDocument, e.Path, e.Ext)
}

func (e *UnsupportedDocumentError) Is(target error) bool {
	return target == ErrUnsupportedDocument
}

func (e *UnsupportedDocumentError) Unwrap() error { return ErrUnsupportedDocument }

// IsUnsupportedDocument reports whether err is (or wraps) an unsupported
// document rejection.
func IsUnsupportedDocument(err error) bool {
	return errors.Is(err, ErrUnsupportedDocument)
}

package cli

import (
	"errors"
	"fmt"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/vault"
)

// BatchError reports that some notes in a batch could not be updated. The
// individual failures are in the log.
type BatchError struct {
	Count int
}

func (e *BatchError) Error() string {
	if e.Count == 1 {
		return "1 error; see log"
	}
	return fmt.Sprintf("%d errors; see log", e.Count)
}

func renderUserError(err error) string {
	if err == nil {
		return ""
	}

	var unsupported *alias.UnsupportedDocumentError
	if errors.As(err, &unsupported) {
		return fmt.Sprintf("%s is not a markdown note", unsupported.Path)
	}

	var backend *vault.BackendError
	if errors.As(err, &backend) && backend.Path != "" && errors.Is(err, vault.ErrNotExist) {
		return fmt.Sprintf("%s: not found", backend.Path)
	}

	return err.Error()
}

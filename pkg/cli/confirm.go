package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// ErrConfirmationRequired is returned by batch commands run without a
// terminal and without --yes.
var ErrConfirmationRequired = errors.New("confirmation required: rerun with --yes")

func confirm(cmd *cobra.Command, deps *Deps, prompt string) (bool, error) {
	if !deps.interactive() {
		return false, ErrConfirmationRequired
	}
	if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

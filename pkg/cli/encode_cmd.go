package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jlrickert/ekr/pkg/hangul"
	"github.com/spf13/cobra"
)

// NewEncodeCmd returns the `encode` cobra command. Without arguments each
// line of piped stdin is encoded.
//
//	ekr encode 한글        # gksrmf
//	printf '영어\n' | ekr encode
func NewEncodeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [TEXT...]",
		Short: "print the two-set keyboard keys for Korean text",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				_, err := fmt.Fprintln(out, hangul.Encode(strings.Join(args, " ")))
				return err
			}
			if deps.interactive() {
				return errors.New("nothing to encode: pass TEXT or pipe it on stdin")
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if _, err := fmt.Fprintln(out, hangul.Encode(sc.Text())); err != nil {
					return err
				}
			}
			return sc.Err()
		},
	}
}

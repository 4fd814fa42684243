package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd returns the `config` cobra command. It prints the effective
// configuration after files, environment and flags are merged.
func NewConfigCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if deps.ConfigFile != "" {
				if _, err := fmt.Fprintf(out, "# %s\n", deps.ConfigFile); err != nil {
					return err
				}
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(deps.Config); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

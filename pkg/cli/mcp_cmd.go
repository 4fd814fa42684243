package cli

import (
	"github.com/jlrickert/ekr/pkg/ekr"
	"github.com/jlrickert/ekr/pkg/mcpserver"
	"github.com/spf13/cobra"
)

// NewMCPCmd returns the `mcp` cobra command, which serves the vault to MCP
// clients over stdio.
func NewMCPCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "serve add_aliases, remove_aliases and encode as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := deps.app(ekr.Options{})
			if err != nil {
				return err
			}
			return mcpserver.New(app.Engine, Version).RunStdio(cmd.Context())
		},
	}
}

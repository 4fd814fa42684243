// Package mcpserver exposes the alias engine as Model Context Protocol tools
// so editors and agents can tag notes without shelling out.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/hangul"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the implementation name reported to clients.
const Name = "ekr"

// Server wraps an MCP server bound to one alias engine.
type Server struct {
	engine *alias.Engine
	mcp    *mcp.Server
}

// New creates a server with the encode, add_aliases and remove_aliases
// tools registered.
func New(engine *alias.Engine, version string) *Server {
	s := &Server{
		engine: engine,
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: Name, Version: version},
			nil,
		),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, for connecting custom transports.
func (s *Server) MCP() *mcp.Server { return s.mcp }

// RunStdio serves over stdin/stdout until the client disconnects or ctx is
// done.
func (s *Server) RunStdio(ctx context.Context) error {
	log.FromContext(ctx).Info("mcp server starting", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

type encodeInput struct {
	Text string `json:"text" jsonschema:"Korean text to convert to Dubeolsik keystrokes"`
}

type encodeOutput struct {
	Encoding string `json:"encoding"`
}

type aliasesInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Vault-relative path of a single markdown note"`
	Folder string `json:"folder,omitempty" jsonschema:"Vault-relative folder processed recursively"`
	All    bool   `json:"all,omitempty" jsonschema:"Process every markdown note in the vault"`
}

type aliasesOutput struct {
	// Count is the number of aliases added or removed.
	Count  int                `json:"count"`
	Result *alias.BatchResult `json:"result,omitempty"`
}

var errTarget = errors.New("exactly one of path, folder or all is required")

func (in aliasesInput) validate() error {
	n := 0
	if in.Path != "" {
		n++
	}
	if in.Folder != "" {
		n++
	}
	if in.All {
		n++
	}
	if n != 1 {
		return errTarget
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "encode",
		Description: "Convert Korean text to the keys typed on a two-set (Dubeolsik) keyboard",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input encodeInput) (*mcp.CallToolResult, encodeOutput, error) {
		return nil, encodeOutput{Encoding: hangul.Encode(input.Text)}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_aliases",
		Description: "Add (eKR) keyboard aliases to the frontmatter of markdown notes",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input aliasesInput) (*mcp.CallToolResult, aliasesOutput, error) {
		if err := input.validate(); err != nil {
			return nil, aliasesOutput{}, err
		}
		if input.Path != "" {
			res, err := s.engine.Add(ctx, vault.NewDocument(input.Path))
			if err != nil {
				return nil, aliasesOutput{}, fmt.Errorf("add aliases: %w", err)
			}
			return nil, aliasesOutput{Count: res.Added}, nil
		}

		var (
			res alias.BatchResult
			err error
		)
		if input.All {
			res, err = s.engine.AddVault(ctx)
		} else {
			res, err = s.engine.AddFolder(ctx, input.Folder)
		}
		if err != nil {
			return nil, aliasesOutput{}, fmt.Errorf("add aliases: %w", err)
		}
		return nil, aliasesOutput{Count: res.AliasesAdded, Result: &res}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "remove_aliases",
		Description: "Remove generated (eKR) aliases from markdown notes, keeping hand-written ones",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input aliasesInput) (*mcp.CallToolResult, aliasesOutput, error) {
		if err := input.validate(); err != nil {
			return nil, aliasesOutput{}, err
		}
		if input.Path != "" {
			res, err := s.engine.Remove(ctx, vault.NewDocument(input.Path))
			if err != nil {
				return nil, aliasesOutput{}, fmt.Errorf("remove aliases: %w", err)
			}
			return nil, aliasesOutput{Count: res.Removed}, nil
		}

		var (
			res alias.BatchResult
			err error
		)
		if input.All {
			res, err = s.engine.RemoveVault(ctx)
		} else {
			res, err = s.engine.RemoveFolder(ctx, input.Folder)
		}
		if err != nil {
			return nil, aliasesOutput{}, fmt.Errorf("remove aliases: %w", err)
		}
		return nil, aliasesOutput{Count: res.AliasesRemoved, Result: &res}, nil
	})
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/ekr"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/spf13/cobra"
)

// ErrNoTarget is returned when add or rm is called without exactly one of a
// path, --folder or --all.
var ErrNoTarget = errors.New("give a note path, --folder DIR or --all")

type aliasOptions struct {
	Folder string
	All    bool
	Yes    bool
	DryRun bool
	Report string
}

func (o aliasOptions) validate(args []string) error {
	n := len(args)
	if o.Folder != "" {
		n++
	}
	if o.All {
		n++
	}
	if n != 1 {
		return ErrNoTarget
	}
	return nil
}

// NewAddCmd returns the `add` cobra command.
//
// Usage examples:
//
//	ekr add notes/한글.md
//	ekr add --folder journal
//	ekr add --all --yes --report run.json
func NewAddCmd(deps *Deps) *cobra.Command {
	var opts aliasOptions

	cmd := &cobra.Command{
		Use:   "add [PATH]",
		Short: "add Dubeolsik aliases to notes",
		Long: `Add "(eKR)" aliases for the note's file name and its existing aliases.
Previously generated aliases are replaced, so running add again is safe.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlias(cmd, deps, alias.OpAdd, opts, args)
		},
	}
	bindAliasFlags(cmd, &opts)
	return cmd
}

// NewRemoveCmd returns the `rm` cobra command.
func NewRemoveCmd(deps *Deps) *cobra.Command {
	var opts aliasOptions

	cmd := &cobra.Command{
		Use:     "rm [PATH]",
		Aliases: []string{"remove"},
		Short:   "remove generated aliases from notes",
		Long:    `Remove every "(eKR)" alias. Hand-written aliases are kept.`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlias(cmd, deps, alias.OpRemove, opts, args)
		},
	}
	bindAliasFlags(cmd, &opts)
	return cmd
}

func bindAliasFlags(cmd *cobra.Command, opts *aliasOptions) {
	cmd.Flags().StringVar(&opts.Folder, "folder", "", "process every note under DIR")
	cmd.Flags().BoolVar(&opts.All, "all", false, "process every note in the vault")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().StringVar(&opts.Report, "report", "", "write a batch report (.json, .yaml or .toml)")
}

func runAlias(cmd *cobra.Command, deps *Deps, op alias.Op, opts aliasOptions, args []string) error {
	if err := opts.validate(args); err != nil {
		return err
	}
	app, err := deps.app(ekr.Options{DryRun: opts.DryRun})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		doc, err := app.Document(args[0])
		if err != nil {
			return err
		}
		return aliasOne(ctx, out, app.Engine, op, doc)
	}

	folder := "."
	if !opts.All {
		folder, err = app.Resolve(opts.Folder)
		if err != nil {
			return err
		}
	}
	docs, err := app.Documents(ctx, folder)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		_, err := fmt.Fprintln(out, "no markdown notes found")
		return err
	}

	label := scopeLabel(folder)
	if !opts.Yes && !opts.DryRun {
		prompt := fmt.Sprintf("%s aliases in %d notes under %s? Make sure your files are backed up.",
			verb(op), len(docs), label)
		ok, err := confirm(cmd, deps, prompt)
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(out, "aborted")
			return err
		}
	}

	var res alias.BatchResult
	if op == alias.OpAdd {
		res = app.Engine.AddAll(ctx, docs)
	} else {
		res = app.Engine.RemoveAll(ctx, docs)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := printBatch(out, res); err != nil {
		return err
	}
	if opts.Report != "" {
		if err := app.WriteReport(opts.Report, label, res); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.FromContext(ctx).Info("report written", "path", opts.Report)
	}
	if len(res.Errors) > 0 {
		return &BatchError{Count: len(res.Errors)}
	}
	return nil
}

func aliasOne(ctx context.Context, out io.Writer, engine *alias.Engine, op alias.Op, doc vault.Document) error {
	prefix := ""
	if engine.DryRun() {
		prefix = "(dry run) "
	}
	if op == alias.OpAdd {
		res, err := engine.Add(ctx, doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s%s: %d aliases added\n", prefix, doc.Path, res.Added)
		return err
	}
	res, err := engine.Remove(ctx, doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s%s: %d aliases removed\n", prefix, doc.Path, res.Removed)
	return err
}

func printBatch(out io.Writer, res alias.BatchResult) error {
	prefix := ""
	if res.DryRun {
		prefix = "(dry run) "
	}
	count, what := res.AliasesAdded, "added"
	if res.Operation == alias.OpRemove {
		count, what = res.AliasesRemoved, "removed"
	}
	_, err := fmt.Fprintf(out, "%s%d notes processed, %d updated, %d aliases %s\n",
		prefix, res.FilesProcessed, res.FilesUpdated, count, what)
	return err
}

func scopeLabel(folder string) string {
	if folder == "." || folder == "" {
		return "the vault"
	}
	return folder
}

func verb(op alias.Op) string {
	if op == alias.OpRemove {
		return "Remove"
	}
	return "Add"
}

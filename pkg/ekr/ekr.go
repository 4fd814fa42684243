// Package ekr wires configuration, the process runtime and the alias engine
// into one application value shared by the command line and MCP front ends.
package ekr

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/ekr/pkg/alias"
	"github.com/jlrickert/ekr/pkg/config"
	"github.com/jlrickert/ekr/pkg/report"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// ErrOutsideVault is returned when a user path does not live under the vault.
var ErrOutsideVault = errors.New("path is outside the vault")

// App is a configured ekr instance.
type App struct {
	// Runtime carries process-level dependencies.
	Runtime *toolkit.Runtime
	Config  config.Config

	// WorkDir and VaultRoot are paths as seen through the runtime jail.
	WorkDir   string
	VaultRoot string

	Fs     afero.Fs
	Store  *vault.FsStore
	Engine *alias.Engine
}

// Options configures New.
type Options struct {
	Runtime *toolkit.Runtime
	Config  config.Config
	DryRun  bool

	// Observer receives per-document outcomes, typically metrics.
	Observer alias.Observer
}

// New validates the runtime and builds the vault store and engine.
func New(opts Options) (*App, error) {
	rt := opts.Runtime
	if rt == nil {
		var err error
		rt, err = toolkit.NewRuntime()
		if err != nil {
			return nil, fmt.Errorf("unable to create runtime: %w", err)
		}
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runtime: %w", err)
	}

	wd, err := rt.Getwd()
	if err != nil {
		return nil, fmt.Errorf("unable to determine working directory: %w", err)
	}

	cfg := opts.Config
	root := cfg.Vault
	if !filepath.IsAbs(root) {
		root = filepath.Join(wd, root)
	}
	root = filepath.Clean(root)

	fsys := Fs(rt)
	store := vault.NewFsStore(fsys, root, vault.WithIgnoreDirs(cfg.IgnoreDirs...))

	engineOpts := []alias.Option{
		alias.WithDryRun(opts.DryRun),
		alias.WithConcurrency(cfg.Concurrency),
		alias.WithHeadingSource(cfg.IncludeHeading),
	}
	if opts.Observer != nil {
		engineOpts = append(engineOpts, alias.WithObserver(opts.Observer))
	}

	return &App{
		Runtime:   rt,
		Config:    cfg,
		WorkDir:   wd,
		VaultRoot: root,
		Fs:        fsys,
		Store:     store,
		Engine:    alias.New(store, engineOpts...),
	}, nil
}

// Fs returns the host filesystem, restricted to the runtime jail when one is
// set.
func Fs(rt *toolkit.Runtime) afero.Fs {
	var fsys afero.Fs = afero.NewOsFs()
	if jail := strings.TrimSpace(rt.GetJail()); jail != "" {
		fsys = afero.NewBasePathFs(fsys, jail)
	}
	return fsys
}

// LoadConfig reads configuration for rt. file, when non-empty, must exist.
func LoadConfig(rt *toolkit.Runtime, file string, flags *pflag.FlagSet) (config.Config, string, error) {
	wd, err := rt.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("unable to determine working directory: %w", err)
	}
	if file != "" && !filepath.IsAbs(file) {
		file = filepath.Join(wd, file)
	}
	return config.Load(config.Options{
		Fs:      Fs(rt),
		WorkDir: wd,
		UserDir: userConfigDir(rt),
		File:    file,
		Flags:   flags,
	})
}

func userConfigDir(rt *toolkit.Runtime) string {
	if xdg := strings.TrimSpace(rt.Get("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "ekr")
	}
	if home := strings.TrimSpace(rt.Get("HOME")); home != "" {
		return filepath.Join(home, ".config", "ekr")
	}
	return ""
}

// HostPath maps a jailed path to the real filesystem path.
func (a *App) HostPath(p string) string {
	if jail := strings.TrimSpace(a.Runtime.GetJail()); jail != "" {
		return filepath.Join(jail, p)
	}
	return p
}

// Resolve turns a path given on the command line into a vault-relative slash
// path. Relative paths are taken from the working directory.
func (a *App) Resolve(userPath string) (string, error) {
	p := userPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(a.WorkDir, p)
	}
	rel, err := filepath.Rel(a.VaultRoot, filepath.Clean(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", userPath, ErrOutsideVault)
	}
	return vault.CleanPath(filepath.ToSlash(rel)), nil
}

// Document resolves userPath to a vault document.
func (a *App) Document(userPath string) (vault.Document, error) {
	rel, err := a.Resolve(userPath)
	if err != nil {
		return vault.Document{}, err
	}
	if rel == "." {
		return vault.Document{}, fmt.Errorf("%s: %w", userPath, vault.ErrInvalid)
	}
	return vault.NewDocument(rel), nil
}

// Documents lists the markdown notes in a folder, or the whole vault when
// folder resolves to the vault root.
func (a *App) Documents(ctx context.Context, folder string) ([]vault.Document, error) {
	return a.Engine.Documents(ctx, a.Scope(folder))
}

// Scope returns the scope for an already resolved folder.
func (a *App) Scope(rel string) vault.Scope {
	if rel == "" || rel == "." {
		return vault.VaultScope()
	}
	return vault.FolderScope(rel)
}

// WriteReport saves res to path, picking the encoding from its extension.
func (a *App) WriteReport(path, scope string, res alias.BatchResult) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.WorkDir, path)
	}
	return report.WriteFile(a.Fs, path, report.Report{
		GeneratedAt: a.Runtime.Clock().Now(),
		Vault:       a.VaultRoot,
		Scope:       scope,
		Result:      res,
	})
}

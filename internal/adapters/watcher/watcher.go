// Package watcher reloads repositories when their backing files change on disk
// and broadcasts the fresh collections to every attached UI channel.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository/scripts"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// Broadcaster delivers an envelope to every attached channel
type Broadcaster interface {
	Broadcast(ctx context.Context, env domain.Envelope)
}

// Collection is a reloadable repository whose snapshot is broadcast under Tag
type Collection struct {
	Name     string
	Tag      domain.MessageType
	Load     func() error
	Snapshot func() any
}

type reloadable[T any] interface {
	Load() error
	GetAll() []T
}

// NewCollection adapts a repository into a watched collection
func NewCollection[T any](name string, tag domain.MessageType, repo reloadable[T]) Collection {
	return Collection{
		Name:     name,
		Tag:      tag,
		Load:     repo.Load,
		Snapshot: func() any { return repo.GetAll() },
	}
}

// Watcher maps file system notifications to repository reloads
type Watcher struct {
	log       *slog.Logger
	fs        *fsnotify.Watcher
	bus       Broadcaster
	root      string
	dataDir   string
	outDir    string
	scriptDir string
	data      map[string]Collection
	artifacts Collection
	scripts   Collection
}

// NewWatcher creates a watcher over the data dir, the artifact tree and the script dir
func NewWatcher(
	cfg *config.RuntimeConfig,
	wallets usecase.WalletRepository,
	environments usecase.EnvironmentRepository,
	contracts usecase.InteractContractRepository,
	deployContracts usecase.DeployContractRepository,
	scriptRepo usecase.ScriptRepository,
	bus Broadcaster,
	log *slog.Logger,
) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := cfg.Dirs()
	w := &Watcher{
		log:       log.With("component", "FileWatcher"),
		fs:        fsw,
		bus:       bus,
		root:      filepath.Clean(cfg.ProjectRoot),
		dataDir:   filepath.Clean(cfg.DataDir),
		outDir:    filepath.Clean(dirs.Out),
		scriptDir: filepath.Clean(dirs.Script),
		data: map[string]Collection{
			repository.WalletsKey:      NewCollection[models.Wallet](repository.WalletsKey, domain.Wallets, wallets),
			repository.EnvironmentsKey: NewCollection[models.Environment](repository.EnvironmentsKey, domain.Environments, environments),
			repository.ContractsKey:    NewCollection[models.InteractContract](repository.ContractsKey, domain.InteractContracts, contracts),
		},
		artifacts: NewCollection[models.DeployContract]("artifacts", domain.DeployContracts, deployContracts),
		scripts:   NewCollection[models.Script]("scripts", domain.Scripts, scriptRepo),
	}

	if err := w.watchAll(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) watchAll() error {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := w.fs.Add(w.dataDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dataDir, err)
	}
	// The root is watched so out/ and script/ are picked up when created later
	if err := w.fs.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	w.addTree(w.outDir)
	if isDir(w.scriptDir) {
		w.add(w.scriptDir)
	}
	return nil
}

func (w *Watcher) add(dir string) {
	if err := w.fs.Add(dir); err != nil {
		w.log.Warn("failed to watch directory", "dir", dir, "error", err)
	}
}

// addTree watches dir and every directory below it
func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			w.add(path)
		}
		return nil
	})
}

// Run processes notifications until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Debug("watching", "data", w.dataDir, "out", w.outDir, "script", w.scriptDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying notifier
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if strings.HasSuffix(path, ".tmp") || event.Op == fsnotify.Chmod {
		return
	}

	if event.Has(fsnotify.Create) && isDir(path) {
		switch {
		case path == w.outDir || within(w.outDir, path):
			w.addTree(path)
			w.reload(ctx, w.artifacts)
		case path == w.scriptDir:
			w.add(path)
			w.reload(ctx, w.scripts)
		}
		return
	}

	switch {
	case filepath.Dir(path) == w.dataDir:
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
			return
		}
		name, ok := strings.CutSuffix(filepath.Base(path), ".json")
		if !ok {
			return
		}
		if c, ok := w.data[name]; ok {
			w.reload(ctx, c)
		}
	case within(w.outDir, path) && filepath.Ext(path) == ".json":
		w.reload(ctx, w.artifacts)
	case filepath.Dir(path) == w.scriptDir && strings.HasSuffix(path, scripts.ScriptSuffix):
		w.reload(ctx, w.scripts)
	case (path == w.outDir || path == w.scriptDir) && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)):
		if path == w.outDir {
			w.reload(ctx, w.artifacts)
		} else {
			w.reload(ctx, w.scripts)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, c Collection) {
	if err := c.Load(); err != nil {
		metrics.Reload(c.Name, false)
		w.log.Error("failed to reload collection", "collection", c.Name, "error", err)
		return
	}
	metrics.Reload(c.Name, true)

	env, err := domain.NewEnvelope(c.Tag, c.Snapshot())
	if err != nil {
		w.log.Error("failed to encode collection", "collection", c.Name, "error", err)
		return
	}
	w.log.Debug("broadcasting reload", "collection", c.Name, "type", c.Tag)
	w.bus.Broadcast(ctx, env)
}

// within reports whether path lies strictly below root
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

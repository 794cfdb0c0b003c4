package watcher

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository/contracts"
	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository/scripts"
	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
)

const anvilKey0 = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type recordingBus struct {
	mu   sync.Mutex
	sent []domain.Envelope
}

func (b *recordingBus) Broadcast(_ context.Context, env domain.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, env)
}

func (b *recordingBus) envelopes() []domain.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Envelope(nil), b.sent...)
}

// waitFor blocks until a broadcast of type t whose data contains needle arrives
func (b *recordingBus) waitFor(t *testing.T, typ domain.MessageType, needle string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, env := range b.envelopes() {
			if env.Type == typ && strings.Contains(string(env.Data), needle) {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond, "no %s broadcast containing %q", typ, needle)
}

// waitCount blocks until at least n broadcasts of type typ arrived
func (b *recordingBus) waitCount(t *testing.T, typ domain.MessageType, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		count := 0
		for _, env := range b.envelopes() {
			if env.Type == typ {
				count++
			}
		}
		return count >= n
	}, 5*time.Second, 20*time.Millisecond, "expected %d %s broadcasts", n, typ)
}

type fixture struct {
	cfg     *config.RuntimeConfig
	bus     *recordingBus
	watcher *Watcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	cfg := &config.RuntimeConfig{
		ProjectRoot:   root,
		DataDir:       filepath.Join(root, ".osmium"),
		FoundryConfig: &config.FoundryConfig{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	wallets, err := repository.NewWalletRepository(cfg, log)
	require.NoError(t, err)
	environments, err := repository.NewEnvironmentRepository(cfg, log)
	require.NoError(t, err)
	interact, err := repository.NewInteractContractRepository(cfg, log)
	require.NoError(t, err)

	bus := &recordingBus{}
	w, err := NewWatcher(cfg, wallets, environments, interact,
		contracts.NewRepository(cfg, log), scripts.NewRepository(cfg, log), bus, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	return &fixture{cfg: cfg, bus: bus, watcher: w}
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, f.watcher.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// writeAtomic mimics the repositories: write a sibling .tmp file and rename it over the target
func writeAtomic(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path+".tmp", data, 0644))
	require.NoError(t, os.Rename(path+".tmp", path))
}

func TestWatcher_DataFiles(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	doc, err := json.Marshal(map[string]any{
		"wallets": []map[string]string{{"id": "w1", "name": "deployer", "privateKey": anvilKey0, "address": "stale"}},
	})
	require.NoError(t, err)
	writeAtomic(t, filepath.Join(f.cfg.DataDir, "wallets.json"), doc)

	// the address is recomputed from the key on reload
	f.bus.waitFor(t, domain.Wallets, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	doc, err = json.Marshal(map[string]any{
		"environments": []map[string]string{{"id": "e1", "name": "local", "rpc": "http://127.0.0.1:8545"}},
	})
	require.NoError(t, err)
	writeAtomic(t, filepath.Join(f.cfg.DataDir, "environments.json"), doc)
	f.bus.waitFor(t, domain.Environments, `"local"`)
}

func TestWatcher_Artifacts(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	artifact, err := json.Marshal(map[string]any{
		"abi":      []any{},
		"bytecode": map[string]any{"object": "0x6080"},
		"metadata": map[string]any{
			"settings": map[string]any{"compilationTarget": map[string]string{"src/Counter.sol": "Counter"}},
		},
	})
	require.NoError(t, err)

	// out/ does not exist yet: it is discovered through the project root watch
	out := filepath.Join(f.cfg.ProjectRoot, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	f.bus.waitCount(t, domain.DeployContracts, 1)
	require.NoError(t, os.Mkdir(filepath.Join(out, "Counter.sol"), 0755))
	f.bus.waitCount(t, domain.DeployContracts, 2)

	writeAtomic(t, filepath.Join(out, "Counter.sol", "Counter.json"), artifact)
	f.bus.waitFor(t, domain.DeployContracts, `"Counter"`)
}

func TestWatcher_Scripts(t *testing.T) {
	f := newFixture(t)
	f.run(t)

	require.NoError(t, os.Mkdir(filepath.Join(f.cfg.ProjectRoot, "script"), 0755))
	f.bus.waitCount(t, domain.Scripts, 1)

	source := "contract Deploy is Script {\n}\n"
	writeAtomic(t, filepath.Join(f.cfg.ProjectRoot, "script", "Deploy.s.sol"), []byte(source))
	f.bus.waitFor(t, domain.Scripts, `"script/Deploy.s.sol"`)
}

func TestWatcher_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("temporary files are ignored", func(t *testing.T) {
		f := newFixture(t)
		f.watcher.handle(ctx, fsnotify.Event{Name: filepath.Join(f.cfg.DataDir, "wallets.json.tmp"), Op: fsnotify.Create})
		assert.Empty(t, f.bus.envelopes())
	})

	t.Run("unknown data files are ignored", func(t *testing.T) {
		f := newFixture(t)
		f.watcher.handle(ctx, fsnotify.Event{Name: filepath.Join(f.cfg.DataDir, "config.local.json"), Op: fsnotify.Write})
		assert.Empty(t, f.bus.envelopes())
	})

	t.Run("chmod is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.watcher.handle(ctx, fsnotify.Event{Name: filepath.Join(f.cfg.DataDir, "wallets.json"), Op: fsnotify.Chmod})
		assert.Empty(t, f.bus.envelopes())
	})

	t.Run("one broadcast per notification", func(t *testing.T) {
		f := newFixture(t)
		event := fsnotify.Event{Name: filepath.Join(f.cfg.DataDir, "contracts.json"), Op: fsnotify.Write}
		f.watcher.handle(ctx, event)
		f.watcher.handle(ctx, event)

		sent := f.bus.envelopes()
		require.Len(t, sent, 2)
		assert.Equal(t, domain.InteractContracts, sent[0].Type)
		assert.JSONEq(t, `[]`, string(sent[0].Data))
	})

	t.Run("failed reload does not broadcast", func(t *testing.T) {
		f := newFixture(t)
		path := filepath.Join(f.cfg.DataDir, "environments.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		f.watcher.handle(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write})
		assert.Empty(t, f.bus.envelopes())
	})
}

func TestWithin(t *testing.T) {
	root := filepath.Join("/p", "out")
	assert.True(t, within(root, filepath.Join(root, "A.sol", "A.json")))
	assert.False(t, within(root, root))
	assert.False(t, within(root, filepath.Join("/p", "outside")))
	assert.False(t, within(root, filepath.Join("/p", "src", "A.sol")))
}

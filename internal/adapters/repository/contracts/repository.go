package contracts

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// Repository exposes the deployable contracts found in the compiled artifact output
type Repository struct {
	projectRoot string
	srcDir      string
	outDir      string
	contracts   []models.DeployContract
	log         *slog.Logger
	mu          sync.RWMutex
}

var _ usecase.DeployContractRepository = (*Repository)(nil)

// NewRepository creates the repository and performs the initial scan
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	dirs := cfg.Dirs()
	r := &Repository{
		projectRoot: cfg.ProjectRoot,
		srcDir:      dirs.Src,
		outDir:      dirs.Out,
		contracts:   []models.DeployContract{},
		log:         log.With("component", "DeployContractRepository"),
	}
	if err := r.Load(); err != nil {
		r.log.Warn("initial artifact scan failed", "error", err)
	}
	return r
}

// OutDir returns the artifact directory being scanned
func (r *Repository) OutDir() string {
	return r.outDir
}

// Load rescans the artifact directory. Missing src or out directories yield an empty list.
func (r *Repository) Load() error {
	found, err := r.scan()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = found
	return err
}

func (r *Repository) scan() ([]models.DeployContract, error) {
	found := []models.DeployContract{}
	if !isDir(r.srcDir) || !isDir(r.outDir) {
		return found, nil
	}

	seen := make(map[string]bool)
	err := filepath.WalkDir(r.outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// forge may be rewriting the tree while we walk it
			if path == r.outDir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		contract, ok := r.processArtifact(path)
		if !ok || seen[contract.ID] {
			return nil
		}
		seen[contract.ID] = true
		found = append(found, contract)
		return nil
	})

	sort.Slice(found, func(i, j int) bool { return found[i].Target() < found[j].Target() })
	return found, err
}

// processArtifact reads one artifact and keeps it when its source lives under the src dir
func (r *Repository) processArtifact(artifactPath string) (models.DeployContract, bool) {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		r.log.Debug("skipping unreadable artifact", "path", artifactPath, "error", err)
		return models.DeployContract{}, false
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return models.DeployContract{}, false
	}

	// Interfaces and abstract contracts cannot be created
	if artifact.Bytecode.Object == "" || artifact.Bytecode.Object == "0x" {
		return models.DeployContract{}, false
	}

	entries := lo.Entries(artifact.Metadata.Settings.CompilationTarget)
	if len(entries) != 1 {
		return models.DeployContract{}, false
	}
	sourceName, contractName := entries[0].Key, entries[0].Value

	if !r.underSrc(sourceName) {
		return models.DeployContract{}, false
	}

	return models.DeployContract{
		ID:   repository.DerivedID(sourceName, contractName),
		Name: contractName,
		Path: sourceName,
		ABI:  artifact.ABI,
	}, true
}

// underSrc reports whether a compilation source path (project relative) lies in the src dir
func (r *Repository) underSrc(sourceName string) bool {
	abs := sourceName
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.projectRoot, filepath.FromSlash(sourceName))
	}
	rel, err := filepath.Rel(r.srcDir, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GetAll returns every discovered contract, never nil
func (r *Repository) GetAll() []models.DeployContract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]models.DeployContract, 0, len(r.contracts)), r.contracts...)
}

// GetByID returns a discovered contract
func (r *Repository) GetByID(id string) (models.DeployContract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.contracts, func(c models.DeployContract) bool { return c.ID == id })
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package scripts

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// ScriptSuffix marks forge deployment script sources
const ScriptSuffix = ".s.sol"

var scriptContract = regexp.MustCompile(`contract\s+(\w+)\s+is\s+Script`)

// Repository exposes the deployment scripts declared in the script directory
type Repository struct {
	projectRoot string
	scriptDir   string
	scripts     []models.Script
	log         *slog.Logger
	mu          sync.RWMutex
}

var _ usecase.ScriptRepository = (*Repository)(nil)

// NewRepository creates the repository and performs the initial scan
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	r := &Repository{
		projectRoot: cfg.ProjectRoot,
		scriptDir:   cfg.Dirs().Script,
		scripts:     []models.Script{},
		log:         log.With("component", "ScriptRepository"),
	}
	if err := r.Load(); err != nil {
		r.log.Warn("initial script scan failed", "error", err)
	}
	return r
}

// ScriptDir returns the directory being scanned
func (r *Repository) ScriptDir() string {
	return r.scriptDir
}

// Load rescans the script directory. A missing directory yields an empty list.
func (r *Repository) Load() error {
	found, err := r.scan()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = found
	return err
}

func (r *Repository) scan() ([]models.Script, error) {
	found := []models.Script{}

	entries, err := os.ReadDir(r.scriptDir)
	if os.IsNotExist(err) {
		return found, nil
	}
	if err != nil {
		return found, err
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ScriptSuffix) {
			continue
		}
		full := filepath.Join(r.scriptDir, entry.Name())
		content, err := os.ReadFile(full)
		if err != nil {
			r.log.Debug("skipping unreadable script", "path", full, "error", err)
			continue
		}
		rel := r.relative(full)

		for _, match := range scriptContract.FindAllStringSubmatch(string(content), -1) {
			s := models.Script{ID: repository.DerivedID(rel, match[1]), Name: match[1], Path: rel}
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			found = append(found, s)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Target() < found[j].Target() })
	return found, nil
}

// relative returns a slash separated path relative to the project root
func (r *Repository) relative(path string) string {
	rel, err := filepath.Rel(r.projectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// GetAll returns every discovered script, never nil
func (r *Repository) GetAll() []models.Script {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]models.Script, 0, len(r.scripts)), r.scripts...)
}

// GetByID returns a discovered script
func (r *Repository) GetByID(id string) (models.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.scripts, func(s models.Script) bool { return s.ID == id })
}

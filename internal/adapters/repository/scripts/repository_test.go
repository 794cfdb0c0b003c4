package scripts

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/adapters/repository"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
)

func newTestRepository(t *testing.T, files map[string]string) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	cfg := &config.RuntimeConfig{ProjectRoot: root, FoundryConfig: &config.FoundryConfig{}}
	return NewRepository(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))), root
}

func TestRepository(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		repo, _ := newTestRepository(t, nil)
		assert.NotNil(t, repo.GetAll())
		assert.Empty(t, repo.GetAll())
	})

	t.Run("finds script contracts", func(t *testing.T) {
		repo, _ := newTestRepository(t, map[string]string{
			"script/Deploy.s.sol": `
import {Script} from "forge-std/Script.sol";
contract DeployScript is Script {}
contract DeployScript is Script {}
contract Helper {}
contract Upgrade   is   Script, Test {}`,
			"script/Util.sol":       `contract NotAScript is Script {}`,
			"script/nested/X.s.sol": `contract Nested is Script {}`,
			"src/Counter.sol":       `contract Counter {}`,
		})

		all := repo.GetAll()
		require.Len(t, all, 2)
		assert.Equal(t, "DeployScript", all[0].Name)
		assert.Equal(t, "script/Deploy.s.sol", all[0].Path)
		assert.Equal(t, "script/Deploy.s.sol:DeployScript", all[0].Target())
		assert.Equal(t, "Upgrade", all[1].Name)
		assert.Equal(t, repository.DerivedID("script/Deploy.s.sol", "DeployScript"), all[0].ID)
	})

	t.Run("ids are stable across rescans", func(t *testing.T) {
		repo, root := newTestRepository(t, map[string]string{
			"script/A.s.sol": `contract A is Script {}`,
		})
		before := repo.GetAll()
		require.Len(t, before, 1)

		require.NoError(t, os.WriteFile(filepath.Join(root, "script/B.s.sol"), []byte(`contract B is Script {}`), 0644))
		require.NoError(t, repo.Load())

		after := repo.GetAll()
		require.Len(t, after, 2)
		got, ok := repo.GetByID(before[0].ID)
		require.True(t, ok)
		assert.Equal(t, "A", got.Name)
	})
}

package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func TestCrawler_ScanProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"src/a/A.java",
		"src/a/B.JAVA",
		"src/a/notes.txt",
		".git/objects/C.java",
		"build/Gen.java",
	)

	t.Run("Extension filter and ignored dirs", func(t *testing.T) {
		c := NewCrawler(".java").Ignore("build")

		var found []string
		err := c.ScanProject(root, func(path string) error {
			rel, _ := filepath.Rel(root, path)
			found = append(found, filepath.ToSlash(rel))
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"src/a/A.java", "src/a/B.JAVA"}, found)
	})

	t.Run("No filter takes every file", func(t *testing.T) {
		files, err := NewCrawler().Collect([]string{filepath.Join(root, "src")})
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("Overlapping roots are deduplicated", func(t *testing.T) {
		files, err := NewCrawler(".java").Collect([]string{
			filepath.Join(root, "src"),
			filepath.Join(root, "src", "a"),
			filepath.Join(root, "src", "a", "A.java"),
		})
		require.NoError(t, err)
		assert.Len(t, files, 2)
		for _, f := range files {
			assert.True(t, filepath.IsAbs(f))
		}
	})

	t.Run("Missing root", func(t *testing.T) {
		_, err := NewCrawler().Collect([]string{filepath.Join(root, "missing")})
		assert.Error(t, err)
	})
}

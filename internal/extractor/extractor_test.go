package extractor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractFromFile(t *testing.T) {
	testFile := filepath.Join("testdata", "Sample.java")

	ext, err := NewExtractor("java")
	require.NoError(t, err)

	literals, err := ext.ExtractFromFile(context.Background(), testFile)
	require.NoError(t, err)

	t.Run("Overall Count", func(t *testing.T) {
		// Comments are not literals.
		assert.Equal(t, 4, len(literals), "Should extract FOO, the forName and getMethod arguments, and plain")
	})

	t.Run("Positions and values", func(t *testing.T) {
		require.Len(t, literals, 4)

		assert.Equal(t, "SRC(a.b.Foo)", literals[0].Value)
		assert.Equal(t, `"SRC(a.b.Foo)"`, literals[0].Content)
		assert.Equal(t, 5, literals[0].StartLine)
		assert.Equal(t, "java", literals[0].Language)
		assert.Equal(t, testFile, literals[0].Filepath)

		assert.Equal(t, "SRC/(a.b.Foo)", literals[1].Value)
		assert.Equal(t, 9, literals[1].StartLine)

		assert.Equal(t, "SRM(a.b.Foo bar)", literals[2].Value)
		assert.Equal(t, 10, literals[2].StartLine)

		assert.Equal(t, "hello", literals[3].Value)
	})
}

func TestExtractor_UnsupportedLanguage(t *testing.T) {
	_, err := NewExtractor("cobol")
	assert.Error(t, err)
}

func TestExtractor_MissingFile(t *testing.T) {
	ext, err := NewExtractor("java")
	require.NoError(t, err)

	_, err = ext.ExtractFromFile(context.Background(), filepath.Join("testdata", "Missing.java"))
	assert.Error(t, err)
}

func TestUnquoteJava(t *testing.T) {
	assert.Equal(t, "abc", unquoteJava(`"abc"`))
	assert.Equal(t, `a\"b`, unquoteJava(`"a\"b"`))
	assert.Equal(t, "line one\n", unquoteJava("\"\"\"\nline one\n\"\"\""))
	assert.Equal(t, "", unquoteJava(`""`))
}

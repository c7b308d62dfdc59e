package dviluatab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTable = `
return {
  descriptions = {
    [65] = { index = 36, unicode = 65 },
    ["66"] = { index = 37, unicode = 66 },
    [174] = { index = 443, unicode = { 102, 102 } },
    [200] = { index = 500 },
  },
}
`

func writeSample(t *testing.T, dir, name string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(sampleTable), 0644)
	require.NoError(t, err)
}

func TestTableFile(t *testing.T) {
	require.Equal(t, filepath.Join("root", "lmroman10-regular.lua"),
		TableFile("root", "lmroman10-regular.otf"))
	require.Equal(t, filepath.Join("root", "jetbrainsmono-bold.lua"),
		TableFile("root", "JetBrainsMono-Bold.ttf"),
		"expected the basename lowercased")
	require.Equal(t, filepath.Join("root", "noext.lua"),
		TableFile("root", "noext"))
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "test.lua")

	table, err := LoadTable(dir, "Test.otf")
	require.NoError(t, err)
	require.Len(t, table, 4)

	a := table["65"]
	require.Equal(t, 36, a.Index)
	require.Equal(t, []rune{'A'}, a.Unicode, "expected a scalar unicode value")

	b := table["66"]
	require.Equal(t, 37, b.Index, "expected string keys handled like numeric ones")

	lig := table["174"]
	require.Equal(t, 443, lig.Index)
	require.Equal(t, []rune{'f', 'f'}, lig.Unicode, "expected the ligature sequence")

	bare := table["200"]
	require.Equal(t, 500, bare.Index)
	require.Nil(t, bare.Unicode, "expected no unicode value")
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(t.TempDir(), "Nothing.otf")
	require.Error(t, err)
}

func TestLoadTableWithoutDescriptions(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("return { foo = 1 }"), 0644)
	require.NoError(t, err)
	_, err = LoadTable(dir, "Broken.otf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "descriptions")
}

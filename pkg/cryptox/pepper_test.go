package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestLoadPepperGeneratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := cryptox.LoadPepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := cryptox.LoadPepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestLoadPepperRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := cryptox.LoadPepper(path)
	require.Error(t, err)

	_, err = cryptox.LoadPepper("")
	require.Error(t, err)
}

package directory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	Refresh()
	defer Refresh()

	dir, err := GetConfigDir("kunzip")
	assert.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "kunzip", filepath.Base(dir))

	file, err := GetConfigFile("kunzip", "config.toml")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), file)
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	Refresh()
	defer Refresh()

	path, err := Expand("~/archives/out")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "archives", "out"), path)

	path, err = Expand("relative/out")
	assert.NoError(t, err)
	assert.Equal(t, "relative/out", path)
}

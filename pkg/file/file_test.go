package file_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/tool-watchdog/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileService_ReadYamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: stylus\ninterval: 2s\n"), 0o600))

	var out struct {
		Name     string        `yaml:"name"`
		Interval time.Duration `yaml:"interval"`
	}
	err := file.NewFileService().ReadYamlFile(path, &out)

	require.NoError(t, err)
	assert.Equal(t, "stylus", out.Name)
	assert.Equal(t, 2*time.Second, out.Interval)
}

func TestFileService_ModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.dat")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, want, want))

	got, err := file.NewFileService().ModTime(path)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = file.NewFileService().ModTime(path + ".missing")
	assert.True(t, os.IsNotExist(err))
}

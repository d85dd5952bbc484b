package assets

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

func setup(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/assets/css/site.css", []byte("body{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/assets/favicon.ico", []byte("ico"), 0o644))
	return fs
}

func TestCopyAll(t *testing.T) {
	fs := setup(t)
	c := NewCopier(fs, "src/assets", "public", nil)

	n, err := c.CopyAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := afero.ReadFile(fs, "public/css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}

func TestCopyAll_MissingFolder(t *testing.T) {
	c := NewCopier(afero.NewMemMapFs(), "src/assets", "public", nil)
	n, err := c.CopyAll()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSync(t *testing.T) {
	fs := setup(t)
	c := NewCopier(fs, "src/assets", "public", nil)

	require.NoError(t, afero.WriteFile(fs, "src/assets/css/site.css", []byte("p{}"), 0o644))
	require.NoError(t, c.Sync("src/assets/css/site.css"))
	data, err := afero.ReadFile(fs, "public/css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "p{}", string(data))

	require.NoError(t, fs.Remove("src/assets/css/site.css"))
	require.NoError(t, c.Sync("src/assets/css/site.css"))
	exists, err := afero.Exists(fs, "public/css/site.css")
	require.NoError(t, err)
	assert.False(t, exists)

	err = c.Sync("src/pages/index.tpl")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryFileSystem))
}

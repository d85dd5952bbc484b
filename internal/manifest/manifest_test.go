package manifest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *BuildManifest {
	m := New("1.2.3")
	m.Inputs = Inputs{ConfigHash: "abc", Models: []string{"posts"}}
	m.Pages = []Page{
		{View: "index.tpl", Output: "index.html", Slug: "index", RunCount: 1},
		{View: "posts/post.tpl", Output: "posts/post-1.html", Slug: "post-1", Dynamic: true, RunCount: 2},
	}
	return m
}

func TestNew_AssignsBuildID(t *testing.T) {
	m := New("dev")
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", m.Status)
	assert.NotEqual(t, m.ID, New("dev").ID)
}

func TestWrite_ReadBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := sample()

	path, err := m.Write(fs, "public")
	require.NoError(t, err)
	assert.Equal(t, "public/"+FileName, path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID, restored.ID)
	assert.Len(t, restored.Pages, 2)
	assert.True(t, restored.Pages[1].Dynamic)
}

func TestHash_IgnoresRunState(t *testing.T) {
	a := sample()
	b := sample()
	b.Pages[0].RunCount = 9
	b.Duration = 1234

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Pages = b.Pages[:1]
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte("{"))
	assert.Error(t, err)
}

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_AddReportsNewMembers(t *testing.T) {
	s := New[string]("index.tpl")

	assert.False(t, s.Add("index.tpl"))
	assert.True(t, s.Add("about.tpl"))
	assert.True(t, s.Has("about.tpl"))
	assert.False(t, s.Has("contact.tpl"))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := New("a")
	c := s.Clone()
	c.Add("b")

	assert.False(t, s.Has("b"))
	assert.Equal(t, []string{"a", "b"}, Sorted(c))
}

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"About":          "about",
		" Hello World ":  "hello-world",
		"my_page.v2":     "my-page-v2",
		"already-a-slug": "already-a-slug",
		"Ünïcode":        "-n-code",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "About", TitleCase("about"))
	assert.Equal(t, "Hello World", TitleCase("hello WORLD"))
	assert.Equal(t, "About-us", TitleCase("about-us"))
	assert.Equal(t, "Élan  Vital", TitleCase("élan  vital"))
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "", SanitizePath(""))
	assert.Equal(t, "courses", SanitizePath("/courses/"))
	assert.Equal(t, "blog/my-posts", SanitizePath("Blog/My Posts"))
	assert.Equal(t, "a/b", SanitizePath("a//b"))
	assert.Equal(t, "a/b", SanitizePath(`a\b`))
}

func TestTrimLines(t *testing.T) {
	assert.Equal(t, "<p>\nhi\n</p>\n", TrimLines("  <p>\n\thi  \n</p>"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "course", BaseName("courses/course.tpl", ".tpl"))
	assert.Equal(t, "index", BaseName("index.tpl", ".tpl"))
	assert.Equal(t, "page.html", BaseName("page.html", ".tpl"))
}

func TestIsInlineTemplate(t *testing.T) {
	assert.True(t, IsInlineTemplate("Hello {{model.name}}"))
	assert.True(t, IsInlineTemplate("{% include \"x\" %}"))
	assert.True(t, IsInlineTemplate("<h1>Title</h1>"))
	assert.False(t, IsInlineTemplate("blog/post.tpl"))
}

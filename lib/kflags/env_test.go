package kflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFlag struct {
	name  string
	value string
	set   bool
}

func (ff *fakeFlag) Name() string {
	return ff.name
}

func (ff *fakeFlag) Set(value string) error {
	ff.value = value
	ff.set = true
	return nil
}

func (ff *fakeFlag) SetContent(origin string, content []byte) error {
	return ff.Set(string(content))
}

func TestCamelRewrite(t *testing.T) {
	assert.Equal(t, "", CamelRewrite(""))
	assert.Equal(t, "Foo", CamelRewrite("foo"))
	assert.Equal(t, "FooBar", CamelRewrite("foo-bar"))
	assert.Equal(t, "FooBarBaz", CamelRewrite("foo_bar----baz--"))
}

func TestDefaultEnvRemap(t *testing.T) {
	assert.Equal(t, "KUNZIP_DEST", DefaultEnvRemap("kunzip", "dest"))
	assert.Equal(t, "KUNZIP_KEEP_GOING", DefaultEnvRemap("kunzip", "keep-going"))
	assert.Equal(t, "PROD_KUNZIP_NO_CLOBBER", PrefixRemap(DefaultEnvRemap, "prod")("kunzip", "no-clobber"))
}

func TestEnvAugmenter(t *testing.T) {
	env := map[string]string{
		"KUNZIP_DEST":       "/tmp/out",
		"TEST_KUNZIP_UMASK": "022",
	}
	lookup := func(name string) (string, bool) {
		value, found := env[name]
		return value, found
	}

	dest := &fakeFlag{name: "dest"}
	umask := &fakeFlag{name: "umask"}

	ea := NewEnvAugmenter(WithLookup(lookup))
	found, err := ea.VisitFlag("kunzip", dest)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/tmp/out", dest.value)

	found, err = ea.VisitFlag("kunzip", umask)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.False(t, umask.set)

	ea = NewEnvAugmenter(WithLookup(lookup), WithPrefixes("test"))
	found, err = ea.VisitFlag("kunzip", umask)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "022", umask.value)
	assert.NoError(t, ea.Done())
}

func TestEnvMangler(t *testing.T) {
	looked := []string{}
	lookup := func(name string) (string, bool) {
		looked = append(looked, name)
		return "", false
	}

	skip := func(components ...string) string {
		if components[len(components)-1] == "config" {
			return ""
		}
		return JoinRemap("__", CamelRewrite)(components...)
	}
	ea := NewEnvAugmenter(WithLookup(lookup), WithEnvMangler(skip))
	for _, name := range []string{"keep-going", "config"} {
		found, err := ea.VisitFlag("kunzip", &fakeFlag{name: name})
		assert.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, []string{"Kunzip__KeepGoing"}, looked)
}

func TestSkipNamespaceRemap(t *testing.T) {
	assert.Equal(t, "keep-going", SkipNamespaceRemap(JoinRemap(""))("kunzip", "keep-going"))
	assert.Equal(t, "KeepGoing", SkipNamespaceRemap(JoinRemap("", CamelRewrite))("kunzip", "keep-going"))
	assert.Equal(t, "PROD_DEST", SkipNamespaceRemap(DefaultEnvRemap)("kunzip", "prod", "dest"))
}

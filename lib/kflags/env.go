package kflags

import (
	"os"
	"regexp"
	"strings"
	"unicode"
)

// An VarMangler is a function capable of turning a set of strings in the name of a variable.
//
// Normally, VarMangler is called with a prefix configured with a function like
// NewEnvAugmenter, the namespace, and the flag name.
//
// If the empty string is returned, the variable is not looked up.
// This can be used to prevent some variables from being looked up in the environment, for example.
type VarMangler func(components ...string) string

// A VarRewriter is just like a VarMangler, but does not merge the strings together,
// and works on an element at a time.
type VarRewriter func(string) string

type EnvAugmenter struct {
	prefix  []string
	mangler VarMangler
	lookup  func(string) (string, bool)
}

type EnvModifier func(e *EnvAugmenter)

// JoinRemap returns a VarMangler that joins each element after passing it through
// the specified rewriters.
//
// A nil rewriter is accepted, and performs no operation.
func JoinRemap(separator string, rewriter ...VarRewriter) VarMangler {
	return func(elements ...string) string {
		result := []string{}
		for _, el := range elements {
			for _, r := range rewriter {
				if r == nil {
					continue
				}

				el = r(el)
			}
			result = append(result, el)
		}

		return strings.Join(result, separator)
	}
}

// Separators matches the characters CamelRewrite and UnderscoreRewrite
// consider word separators.
var Separators = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CamelRewrite is a simple VarRewriter that turns a string like "keep-going"
// or "keep_going" in camel case, KeepGoing.
func CamelRewrite(el string) string {
	var b strings.Builder
	for _, fragment := range Separators.Split(el, -1) {
		if fragment == "" {
			continue
		}
		runes := []rune(fragment)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// UnderscoreRewrite is a simple VarRewriter that turns unknown chars into _.
func UnderscoreRewrite(el string) string {
	return Separators.ReplaceAllString(el, "_")
}

// UppercaseRewrite is a simple VarRewriter that upper cases everything.
var UppercaseRewrite = strings.ToUpper

// The set of remappers used to turn flags into environment variable names.
var DefaultEnvRemap = JoinRemap("_", UnderscoreRewrite, UppercaseRewrite)

// PrefixRemap returns a VarMangler that always prepends the specified prefixes.
func PrefixRemap(mangler VarMangler, prefix ...string) VarMangler {
	return func(elements ...string) string {
		return mangler(append(prefix, elements...)...)
	}
}

// SkipNamespaceRemap returns a VarMangler that ignores the namespace fragment.
func SkipNamespaceRemap(mangler VarMangler) VarMangler {
	return func(elements ...string) string {
		return mangler(elements[1:]...)
	}
}

// WithEnvMangler specifies the VarMangler to turn the name of a flag into an
// the name of an environment variable.
func WithEnvMangler(m VarMangler) EnvModifier {
	return func(e *EnvAugmenter) {
		e.mangler = m
	}
}

// WithPrefixes prepends the specified prefixes to the looked up environment variables.
//
// For example, if VarMangler would normally look up the environment variable KUNZIP_DEST,
// WithPrefixes("PROD") would look up PROD_KUNZIP_DEST.
func WithPrefixes(prefix ...string) EnvModifier {
	return func(e *EnvAugmenter) {
		e.prefix = prefix
	}
}

// WithLookup replaces os.LookupEnv, mostly useful in tests.
func WithLookup(lookup func(string) (string, bool)) EnvModifier {
	return func(e *EnvAugmenter) {
		e.lookup = lookup
	}
}

// NewEnvAugmenter creates a new EnvAugmenter.
//
// An EnvAugmenter is an object capable of looking up environment variables to
// pre-populate flag defaults.
//
// For example, a flag named 'dest' defined on the 'kunzip' command will by
// default be looked up in the environment variable KUNZIP_DEST.
func NewEnvAugmenter(mods ...EnvModifier) *EnvAugmenter {
	er := &EnvAugmenter{mangler: DefaultEnvRemap, lookup: os.LookupEnv}
	for _, m := range mods {
		m(er)
	}
	return er
}

// VisitFlag implements the VisitFlag interface of Augmenter.
//
// VisitFlag looks for an environment variable named after the configured prefix,
// the requested namespace (reqns) and the flag name.
func (er *EnvAugmenter) VisitFlag(reqns string, fl Flag) (bool, error) {
	tomangle := append(append([]string{}, er.prefix...), reqns, fl.Name())
	env := er.mangler(tomangle...)
	if env == "" {
		return false, nil
	}

	result, found := er.lookup(env)
	if !found {
		return false, nil
	}

	return true, fl.Set(result)
}

// Done implements the Done interface of Augmenter. For the EnvAugmenter, it is a noop.
func (er *EnvAugmenter) Done() error {
	return nil
}

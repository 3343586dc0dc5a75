package kflags

// MapAugmenter assigns flag defaults from a map, typically decoded from a config file.
type MapAugmenter struct {
	args     map[string]string
	manglers []VarMangler
}

type MapModifier func(e *MapAugmenter)

type MapModifiers []MapModifier

func (ems MapModifiers) Apply(e *MapAugmenter) {
	for _, em := range ems {
		em(e)
	}
}

// WithMapMangler sets the list of manglers to use to lookup the parameters in the map.
func WithMapMangler(m ...VarMangler) MapModifier {
	return func(e *MapAugmenter) {
		e.manglers = m
	}
}

// By default, the map augmenter looks up the literal flag name and a camel case version of it.
//
// For example, if the 'keep-going' flag is to be filled, 'keep-going' and 'KeepGoing'
// are both looked up in the supplied map.
var DefaultVarMangler = []VarMangler{SkipNamespaceRemap(JoinRemap("")), SkipNamespaceRemap(JoinRemap("", CamelRewrite))}

// SnakeVarMangler adds the snake case spelling, 'keep_going', to DefaultVarMangler.
var SnakeVarMangler = append(append([]VarMangler{}, DefaultVarMangler...), SkipNamespaceRemap(JoinRemap("", UnderscoreRewrite)))

// NewMapAugmenter returns an augmenter capable of looking up flags in a map.
//
// For example, supply a map like map["keep-going"] = "true", and the flag
// "keep-going" will be set to true.
func NewMapAugmenter(args map[string]string, mods ...MapModifier) *MapAugmenter {
	augmenter := &MapAugmenter{
		args:     args,
		manglers: DefaultVarMangler,
	}

	MapModifiers(mods).Apply(augmenter)
	return augmenter
}

// VisitFlag implements the VisitFlag interface of Augmenter.
func (ma *MapAugmenter) VisitFlag(reqns string, fl Flag) (bool, error) {
	tomangle := []string{reqns, fl.Name()}

	for _, mangler := range ma.manglers {
		name := mangler(tomangle...)
		if name == "" {
			continue
		}

		result, found := ma.args[name]
		if found {
			return true, fl.Set(result)
		}
	}

	return false, nil
}

// Keys returns the names a flag is looked up with, in order.
func (ma *MapAugmenter) Keys(reqns string, name string) []string {
	keys := []string{}
	for _, mangler := range ma.manglers {
		if key := mangler(reqns, name); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// Done implements the Done interface of Augmenter. For the MapAugmenter, it is a noop.
func (ma *MapAugmenter) Done() error {
	return nil
}

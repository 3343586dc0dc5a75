package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/enfabrica/kunzip/lib/config/marshal"
	"github.com/enfabrica/kunzip/lib/kflags"
	"github.com/enfabrica/kunzip/lib/logger"
	"github.com/spf13/pflag"
)

// fileAugmenter provides flag defaults from a configuration file.
//
// The file is loaded the first time a flag is visited, so that its path can
// itself be supplied on the command line or in the environment.
type fileAugmenter struct {
	path     *string
	explicit func() bool
	flags    *pflag.FlagSet
	ns       string
	log      logger.Logger

	loaded bool
	inner  *kflags.MapAugmenter
	err    error
}

func newFileAugmenter(path *string, explicit func() bool, flags *pflag.FlagSet, ns string, log logger.Logger) *fileAugmenter {
	return &fileAugmenter{path: path, explicit: explicit, flags: flags, ns: ns, log: log}
}

func (fa *fileAugmenter) ensureLoaded() {
	if fa.loaded {
		return
	}
	fa.loaded = true
	fa.err = fa.load()
}

func (fa *fileAugmenter) load() error {
	path, err := expand(*fa.path)
	if err != nil {
		return err
	}

	var values map[string]string
	if fa.explicit() {
		values, err = marshal.UnmarshalFlags(path)
	} else {
		// The default file may be in any of the known formats.
		prefix := strings.TrimSuffix(path, filepath.Ext(path))
		path, values, err = marshal.UnmarshalFlagsPrefix(prefix)
		if errors.Is(err, fs.ErrNotExist) {
			fa.log.Debugf("no configuration file in %s.%v - using defaults", prefix, marshal.Formats())
			return nil
		}
	}
	if err != nil {
		return err
	}

	inner := kflags.NewMapAugmenter(values, kflags.WithMapMangler(kflags.SnakeVarMangler...))
	valid := map[string]struct{}{}
	fa.flags.VisitAll(func(fl *pflag.Flag) {
		for _, key := range inner.Keys(fa.ns, fl.Name) {
			valid[key] = struct{}{}
		}
	})
	unknown := []string{}
	for key := range values {
		if _, found := valid[key]; !found {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown settings %v - they don't match any flag", path, unknown)
	}

	fa.log.Infof("loaded %d settings from %s", len(values), path)
	fa.inner = inner
	return nil
}

func (fa *fileAugmenter) VisitFlag(reqns string, fl kflags.Flag) (bool, error) {
	fa.ensureLoaded()
	if fa.inner == nil {
		return false, nil
	}
	return fa.inner.VisitFlag(reqns, fl)
}

func (fa *fileAugmenter) Done() error {
	fa.ensureLoaded()
	if fa.err != nil {
		return fa.err
	}
	if fa.inner == nil {
		return nil
	}
	return fa.inner.Done()
}

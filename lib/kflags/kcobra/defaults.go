package kcobra

import (
	"github.com/enfabrica/kunzip/lib/kflags"
	"github.com/enfabrica/kunzip/lib/multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// PFlag wraps a pflag.Flag to implement the kflags.Flag interface.
type PFlag struct {
	*pflag.Flag
}

func (pf *PFlag) Name() string {
	return pf.Flag.Name
}

func (pf *PFlag) Set(value string) error {
	err := pf.Flag.Value.Set(value)
	if err != nil {
		return err
	}
	pf.Flag.DefValue = value
	return nil
}

func (pf *PFlag) SetContent(origin string, data []byte) error {
	def, err := kflags.SetContent(pf.Flag.Value, origin, data)
	if err != nil {
		return err
	}
	pf.Flag.DefValue = def
	return nil
}

// PopulateDefaults walks all the flags of the command that would run given args,
// and tries to provide defaults using the specified resolvers.
//
// root is the cobra.Command of which to walk the flags to fill in the defaults.
//
// args is the list of command line parameters passed to the command, argv. This is
// generally os.Args. It is expected to include argv[0], the path of the command, as
// first argument.
//
// Flags are only visited if not set explicitly by the user, which requires the
// command line to have been parsed already, see ParseFlags. Resolvers are invoked
// in order: a flag set by one resolver is not visited by the following ones, so
// the first resolver has the highest priority.
func PopulateDefaults(root *cobra.Command, args []string, resolvers ...kflags.Augmenter) error {
	// argv[0] needs to be skipped, args is generally os.Args, which contains argv 0.
	if len(args) >= 1 {
		args = args[1:]
	}

	target, _, err := root.Find(args)
	if err != nil || target == nil {
		target = root
	}

	// Parent commands are considered more generic than child commands, and
	// are walked first.
	stack := []*cobra.Command{}
	for cmd := target; cmd != nil; cmd = cmd.Parent() {
		stack = append(stack, cmd)
	}

	errs := []error{}
	seen := map[string]struct{}{}
	resolve := func(namespace string, r kflags.Augmenter, flag *pflag.Flag) {
		// Prevent setting flags that the user set manually, or that a
		// previous resolver already provided.
		if flag.Changed {
			return
		}
		if _, found := seen[flag.Name]; found {
			return
		}

		found, err := r.VisitFlag(namespace, &PFlag{flag})
		if err != nil {
			errs = append(errs, err)
			return
		}
		if found {
			seen[flag.Name] = struct{}{}
		}
	}

	name := ""
	for ix := range stack {
		cmd := stack[len(stack)-ix-1]

		if name != "" {
			name += "."
		}
		name = name + cmd.Name()

		for _, r := range resolvers {
			resolver := func(flag *pflag.Flag) {
				resolve(name, r, flag)
			}

			cmd.LocalFlags().VisitAll(resolver)
		}
	}

	for _, r := range resolvers {
		if err := r.Done(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierror.New(errs)
}

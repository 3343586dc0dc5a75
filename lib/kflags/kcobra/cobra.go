package kcobra

import (
	"errors"
	"fmt"
	"os"

	"github.com/enfabrica/kunzip/lib/kflags"
	"github.com/enfabrica/kunzip/lib/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSet wraps a pflag.FlagSet to implement the kflags.FlagSet interface.
type FlagSet struct {
	*pflag.FlagSet
}

func (fs *FlagSet) ByteFileVar(p *[]byte, name string, defaultFile string, usage string, mods ...kflags.ByteFileModifier) {
	fs.Var(kflags.NewByteFileFlag(p, defaultFile, mods...), name, usage)
}

// LogFlags logs the value of each flag, and if it was changed by the user.
func LogFlags(command *cobra.Command, log logger.Printer) {
	log("Running: %s", os.Args)
	command.Flags().VisitAll(func(flag *pflag.Flag) {
		name := "--" + flag.Name
		if flag.Shorthand != "" {
			name += " (-" + flag.Shorthand + ")"
		}
		changed := "[not changed by user]"
		if flag.Changed {
			changed = fmt.Sprintf("[changed by user - original '%s']", flag.DefValue)
		}
		log("- flag %s value '%s' %s", name, flag.Value, changed)
	})
}

type options struct {
	ehandlers []kflags.ErrorHandler
	argv      []string
}

type Modifier func(*cobra.Command, *options) error

type Modifiers []Modifier

func (mods Modifiers) Apply(c *cobra.Command, o *options) error {
	for _, m := range mods {
		if err := m(c, o); err != nil {
			return err
		}
	}
	return nil
}

func WithErrorHandler(eh ...kflags.ErrorHandler) Modifier {
	return func(c *cobra.Command, o *options) error {
		o.ehandlers = append(o.ehandlers, eh...)
		return nil
	}
}

// WithArgs replaces os.Args. argv[0] is expected to be the path of the command.
func WithArgs(argv []string) Modifier {
	return func(c *cobra.Command, o *options) error {
		o.argv = argv
		return nil
	}
}

// Exit terminates the process. Replaced in tests.
var Exit = os.Exit

// Execute runs the command, and returns the exit status the process should terminate with.
//
// Errors are passed through the configured ErrorHandlers, and printed. A kflags.UsageError
// causes the usage of the command to be printed as well. A kflags.StatusError determines
// the returned status, 1 is used for any other error.
func Execute(root *cobra.Command, mods ...Modifier) int {
	o := options{
		argv: os.Args,
	}

	err := Modifiers(mods).Apply(root, &o)

	// Cobra expects argv without argv[0], without the path of the command.
	if len(o.argv) >= 1 {
		o.argv = o.argv[1:]
	}
	root.SetArgs(o.argv)

	if err == nil {
		err = root.Execute()
	}
	if err == nil {
		return 0
	}

	cmd, _, nerr := root.Find(o.argv)
	if nerr != nil {
		cmd = root
	}

	for _, eh := range o.ehandlers {
		err = eh(err)
	}

	var ue *kflags.UsageError
	if errors.As(err, &ue) {
		root.PrintErrln(cmd.UsageString())
	}
	exit := 1
	var se *kflags.StatusError
	if ok := errors.As(err, &se); ok {
		exit = se.Code
	}

	root.PrintErrf("ERROR: %s\n", err)
	return exit
}

// Run runs the command, and terminates the process with the status computed by Execute.
func Run(root *cobra.Command, mods ...Modifier) {
	Exit(Execute(root, mods...))
}

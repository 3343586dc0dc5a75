package kcobra

import (
	"github.com/enfabrica/kunzip/lib/kflags"
	"github.com/spf13/cobra"
)

// HiddenFlagSet registers flags that are not shown in the help screen,
// unless --help-all is passed.
type HiddenFlagSet struct {
	inner      *FlagSet
	flags      []string
	showHidden bool
}

func (hfs *HiddenFlagSet) Hide(name string) {
	hfs.inner.MarkHidden(name)
	hfs.flags = append(hfs.flags, name)
}

func (hfs *HiddenFlagSet) BoolVar(p *bool, name string, value bool, usage string) {
	hfs.inner.BoolVar(p, name, value, usage)
	hfs.Hide(name)
}
func (hfs *HiddenFlagSet) StringVar(p *string, name string, value string, usage string) {
	hfs.inner.StringVar(p, name, value, usage)
	hfs.Hide(name)
}
func (hfs *HiddenFlagSet) ByteFileVar(p *[]byte, name string, defaultFile string, usage string, mods ...kflags.ByteFileModifier) {
	hfs.inner.ByteFileVar(p, name, defaultFile, usage, mods...)
	hfs.Hide(name)
}
func (hfs *HiddenFlagSet) IntVar(p *int, name string, value int, usage string) {
	hfs.inner.IntVar(p, name, value, usage)
	hfs.Hide(name)
}

// Unhide makes the hidden flags visible again if --help-all was passed.
//
// Call it before the help screen is rendered, for example from a help function.
func (hfs *HiddenFlagSet) Unhide() {
	if !hfs.showHidden {
		return
	}

	for _, fl := range hfs.flags {
		o := hfs.inner.Lookup(fl)
		if o == nil {
			continue
		}
		o.Hidden = false
	}
}

// HideFlags returns a HiddenFlagSet registering flags on fs, and installs a
// --help-all flag on the command to show them.
func HideFlags(cmd *cobra.Command, fs *FlagSet) *HiddenFlagSet {
	retval := &HiddenFlagSet{
		inner: fs,
	}

	fs.BoolVar(&retval.showHidden, "help-all", false, "Show all the flags available, even those that are less useful and normally hidden.")

	help := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		retval.showHidden = retval.showHidden || c.Flags().Changed("help-all")
		retval.Unhide()
		help(c, args)
	})
	return retval
}

package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/enfabrica/kunzip/lib/config/directory"
	"github.com/enfabrica/kunzip/lib/karchive"
	"github.com/enfabrica/kunzip/lib/kflags"
	"github.com/enfabrica/kunzip/lib/kflags/kcobra"
	"github.com/enfabrica/kunzip/lib/logger"
	"github.com/enfabrica/kunzip/lib/logger/klog"
	"github.com/enfabrica/kunzip/lib/progress"
	"github.com/enfabrica/kunzip/lib/stamp"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Exit statuses, one per class of failure.
const (
	ExitUsage      = 1
	ExitInput      = 2
	ExitEntry      = 3
	ExitFilesystem = 4
)

// NewProgress creates the handler used with --progress.
var NewProgress progress.Factory = progress.NewBar

type Root struct {
	*cobra.Command
	Log logger.Logger

	Dest               string
	Password           []byte
	KeepGoing          bool
	StrictPaths        bool
	NoClobber          bool
	RestorePermissions bool
	RestoreTimes       bool
	Umask              string
	Progress           bool
	Human              bool
	Config             string

	defaultConfig string
	logFlags      *klog.Flags

	stdin          io.Reader
	stdout, stderr io.Writer
}

func NewRoot(stdin io.Reader, stdout, stderr io.Writer) *Root {
	rc := &Root{
		Command: &cobra.Command{
			Use:           "kunzip [flags] <archive>",
			Short:         "Extracts zip archives",
			SilenceUsage:  true,
			SilenceErrors: true,
			Version:       stamp.String(),
			Args:          exactlyOneArchive,
			Example: `  $ kunzip release.zip
        Extracts release.zip in the current directory.

  $ kunzip -d /tmp/out --keep-going damaged.zip
        Extracts what can be extracted of damaged.zip in /tmp/out.

  $ curl -sL https://example.com/archive.zip | kunzip -d out -
        Extracts a zip archive read from stdin.

  $ kunzip --restore-permissions --umask 022 tools.tar.xz
        Extracts a tarball, keeping the permissions stored in it.`,
			Long: `kunzip - extracts zip archives, preserving their directory structure.

Entries that would be written outside of the destination directory are
skipped. Plain, gzip and xz compressed tar files are also supported.

Exit status is 1 for usage errors, 2 if the archive cannot be read,
3 if an entry cannot be extracted, 4 for errors writing to disk.`,
		},
		logFlags: klog.DefaultFlags(),
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	rc.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return kflags.NewUsageError(err)
	})

	config, err := directory.GetConfigFile("kunzip", "config.toml")
	if err != nil {
		config = ""
	}
	rc.defaultConfig = config

	set := &kcobra.FlagSet{FlagSet: rc.Flags()}
	set.StringVarP(&rc.Dest, "dest", "d", ".", "Directory to extract the archive into, created if it does not exist")
	set.ByteFileVar(&rc.Password, "password-file", "", "File containing the password to decrypt encrypted entries", kflags.WithTrim("\r\n"))
	set.BoolVar(&rc.KeepGoing, "keep-going", false, "Skip entries that cannot be extracted, and report all the failures at the end")
	set.BoolVar(&rc.StrictPaths, "strict-paths", false, "Fail on entries with unsafe names, rather than skipping them")
	set.BoolVar(&rc.NoClobber, "no-clobber", false, "Never overwrite existing files")
	set.BoolVar(&rc.RestorePermissions, "restore-permissions", false, "Apply the permissions stored in the archive (unix only)")
	set.BoolVar(&rc.RestoreTimes, "restore-times", false, "Apply the modification times stored in the archive")
	set.StringVar(&rc.Umask, "umask", "022", "Octal umask applied to the restored permissions")
	set.BoolVar(&rc.Progress, "progress", false, "Show a progress bar rather than one line per entry")
	set.BoolVar(&rc.Human, "human", false, "Print sizes in human readable units")
	set.StringVar(&rc.Config, "config", config, "Configuration file providing flag defaults, in toml, yaml or json format")

	hidden := kcobra.HideFlags(rc.Command, set)
	rc.logFlags.Register(hidden, "")

	rc.PreRunE = rc.populate
	rc.RunE = rc.Run
	return rc
}

func exactlyOneArchive(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return kflags.NewUsageErrorf("expected exactly one archive to extract, got %d arguments", len(args))
	}
	return nil
}

// expand replaces a leading ~ with the home directory.
func expand(path string) (string, error) {
	expanded, err := directory.Expand(path)
	if err != nil {
		return "", kflags.NewUsageErrorf("invalid path %s: %w", path, err)
	}
	return expanded, nil
}

// populate fills in the flags not supplied on the command line from the
// environment first, and the configuration file next.
//
// Messages are accumulated until the logger, whose own flags may be
// set from the configuration, is created.
func (rc *Root) populate(cmd *cobra.Command, args []string) error {
	early := logger.NewAccumulator()

	env := kflags.NewEnvAugmenter()
	file := newFileAugmenter(&rc.Config, func() bool {
		return cmd.Flags().Changed("config") || rc.Config != rc.defaultConfig
	}, cmd.Flags(), cmd.Name(), early)

	perr := kcobra.PopulateDefaults(cmd, nil, env, file)

	log, err := klog.New(cmd.Name(), klog.FromFlags(*rc.logFlags), klog.WithOutput(rc.stderr))
	if err != nil {
		return err
	}
	rc.Log = log
	early.Forward(rc.Log)

	if perr != nil {
		return kflags.NewUsageError(perr)
	}
	return nil
}

func (rc *Root) umask() (uint32, error) {
	umask, err := strconv.ParseUint(strings.TrimSpace(rc.Umask), 8, 32)
	if err != nil {
		return 0, kflags.NewUsageErrorf("invalid --umask %q - must be an octal number, like 022", rc.Umask)
	}
	return uint32(umask), nil
}

// Reporter returns the karchive.Reporter printing one line per entry.
func (rc *Root) Reporter() karchive.Reporter {
	lr := karchive.NewLineReporter(func(format string, args ...interface{}) {
		fmt.Fprintf(rc.stdout, format, args...)
	})
	highlight := color.New(color.FgHiYellow).FprintfFunc()
	lr.Highlight = func(format string, args ...interface{}) {
		highlight(rc.stdout, format, args...)
	}
	if rc.Human {
		lr.Size = func(size int64) string {
			if size < 0 {
				return "unknown size"
			}
			return humanize.Bytes(uint64(size))
		}
	}
	if rc.Progress {
		lr.Printer = func(string, ...interface{}) {}
	}
	return lr
}

// Modifiers returns the options for karchive, based on the flags.
func (rc *Root) Modifiers() ([]karchive.Modifier, error) {
	umask, err := rc.umask()
	if err != nil {
		return nil, err
	}

	return []karchive.Modifier{
		karchive.WithLogger(rc.Log),
		karchive.WithReporter(rc.Reporter()),
		karchive.WithPassword(string(rc.Password)),
		karchive.WithKeepGoing(rc.KeepGoing),
		karchive.WithStrictPaths(rc.StrictPaths),
		karchive.WithNoClobber(rc.NoClobber),
		karchive.WithPermissions(rc.RestorePermissions),
		karchive.WithTimes(rc.RestoreTimes),
		karchive.WithFileUmask(umask),
		karchive.WithDirUmask(umask),
	}, nil
}

// StatusOf maps the class of an extraction error to an exit status.
func StatusOf(err error) int {
	switch karchive.ClassOf(err) {
	case karchive.ClassInput:
		return ExitInput
	case karchive.ClassEntry:
		return ExitEntry
	case karchive.ClassFilesystem:
		return ExitFilesystem
	}
	return ExitUsage
}

func (rc *Root) Run(cmd *cobra.Command, args []string) error {
	kcobra.LogFlags(cmd, rc.Log.Debugf)

	mods, err := rc.Modifiers()
	if err != nil {
		return err
	}
	dest, err := expand(rc.Dest)
	if err != nil {
		return err
	}

	if rc.Progress {
		bar := NewProgress(rc.stderr)
		defer bar.Done()
		mods = append(mods, karchive.WithProgress(bar))
	}

	archive := args[0]
	var result *karchive.Result
	if archive == karchive.Stdin {
		result, err = karchive.UnzipStream(rc.stdin, dest, mods...)
	} else {
		archive, err = expand(archive)
		if err != nil {
			return err
		}
		result, err = karchive.ExtractFile(archive, dest, mods...)
	}

	if result != nil {
		rc.Log.Infof("%s: %d directories, %d files (%s), %d symlinks, %d skipped, %d failed",
			archive, result.Directories, result.Files, humanize.Bytes(uint64(result.Bytes)), result.Symlinks, result.Skipped, result.Failed)
	}
	if err != nil {
		return kflags.NewStatusError(StatusOf(err), err)
	}
	return nil
}

package karchive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/enfabrica/kunzip/lib/logger"
	"github.com/enfabrica/kunzip/lib/multierror"
	"github.com/enfabrica/kunzip/lib/progress"
)

type options struct {
	// File umask, and dir umask.
	fumask, dumask uint32

	// Default directory file mode.
	dirmode os.FileMode
	// Mode used to create files, before umask and restored permissions.
	filemode os.FileMode

	password    string
	keepGoing   bool
	strictPaths bool
	noClobber   bool
	permissions bool
	times       bool

	log      logger.Logger
	reporter Reporter
	progress progress.Handler
}

type Modifier func(*options)

type Modifiers []Modifier

func (m Modifiers) Apply(o *options) {
	for _, mod := range m {
		mod(o)
	}
}

func newOptions(mods ...Modifier) *options {
	o := &options{
		dirmode:  0755,
		filemode: 0666,
		log:      logger.Nil,
		reporter: NilReporter{},
		progress: &progress.Discard{},
	}
	Modifiers(mods).Apply(o)
	return o
}

// WithFileUmask sets an umask for written files.
//
// The umask is only applied when permissions from the archive are restored,
// see WithPermissions.
//
// For example: WithFileUmask(0222) will result in no file being writable.
func WithFileUmask(umask uint32) Modifier {
	return func(o *options) {
		o.fumask = umask
	}
}

// WithDirUmask sets an umask for written directories.
//
// Just like WithFileUmask, it only matters when permissions are restored.
func WithDirUmask(umask uint32) Modifier {
	return func(o *options) {
		o.dumask = umask
	}
}

// WithDefaultDirMode sets the privileges to use to create directories.
//
// Archives normally contain directory and file definitions, with files in sub
// directories appearing after the definition of the directory they appear in.
//
// However, this is not mandated. WithDefaultDirMode defines the mode to use to
// create directories that are necessary to unpack a file, but for which a
// definition has not been seen yet, or for which permissions are not restored.
func WithDefaultDirMode(mode os.FileMode) Modifier {
	return func(o *options) {
		o.dirmode = mode
	}
}

// WithPassword sets the password used to decrypt encrypted zip entries.
func WithPassword(password string) Modifier {
	return func(o *options) {
		o.password = password
	}
}

// WithKeepGoing changes the error policy from abort on first error to
// skip and continue.
//
// Failed entries are reported, and the errors are returned together once all
// the entries have been processed. Errors opening the archive, or reading its
// index, still stop the extraction immediately.
func WithKeepGoing(keep bool) Modifier {
	return func(o *options) {
		o.keepGoing = keep
	}
}

// WithStrictPaths turns entries with unsafe names into entry errors.
//
// By default, entries that would be placed outside the destination directory
// are skipped and reported, without affecting the rest of the extraction.
func WithStrictPaths(strict bool) Modifier {
	return func(o *options) {
		o.strictPaths = strict
	}
}

// WithNoClobber prevents existing files from being overwritten.
func WithNoClobber(noclobber bool) Modifier {
	return func(o *options) {
		o.noClobber = noclobber
	}
}

// WithPermissions restores the permission bits stored in the archive.
//
// Only supported on unix systems, ignored elsewhere.
func WithPermissions(restore bool) Modifier {
	return func(o *options) {
		o.permissions = restore
	}
}

// WithTimes restores the modification times stored in the archive.
func WithTimes(restore bool) Modifier {
	return func(o *options) {
		o.times = restore
	}
}

func WithLogger(log logger.Logger) Modifier {
	return func(o *options) {
		o.log = log
	}
}

func WithReporter(r Reporter) Modifier {
	return func(o *options) {
		o.reporter = r
	}
}

// WithProgress supplies a progress.Handler tracking the bytes written for each file.
func WithProgress(h progress.Handler) Modifier {
	return func(o *options) {
		o.progress = h
	}
}

// Result summarizes what an extraction did.
type Result struct {
	Directories int
	Files       int
	Symlinks    int
	Skipped     int
	Failed      int
	// Bytes written to files.
	Bytes int64

	// Directories created on disk, in creation order, including those
	// implicitly created as parents of other entries.
	Created []string
}

type delayed struct {
	path        string
	mode        os.FileMode
	restoreMode bool
	mod         time.Time
}

type extractor struct {
	*options

	// Destination as supplied by the user, used for reporting.
	dest string
	// Absolute destination.
	root string

	// Directories known to exist, created by us or found on disk.
	known map[string]struct{}
	dirs  map[string]*delayed

	result Result
}

// Extract walks all the entries of the Source, and unpacks them in the dest directory.
//
// The destination directory is created if it does not exist.
//
// Entries are processed in the order returned by the Source. Entries with names
// that cannot be safely placed within dest are skipped (see EnclosedName and
// WithStrictPaths). Any other failure stops the extraction, unless WithKeepGoing
// was supplied.
//
// All errors returned are, or wrap, *Error values.
func Extract(src Source, dest string, mods ...Modifier) (*Result, error) {
	return extract(src, dest, newOptions(mods...))
}

func extract(src Source, dest string, o *options) (*Result, error) {
	root, err := filepath.Abs(dest)
	if err != nil {
		return nil, newError(ClassFilesystem, -1, "", fmt.Errorf("could not compute absolute path of %s - %w", dest, err))
	}

	x := &extractor{
		options: o,
		dest:    dest,
		root:    root,
		known:   map[string]struct{}{},
		dirs:    map[string]*delayed{},
	}
	if err := x.mkdir(root); err != nil {
		return &x.result, newError(ClassFilesystem, -1, "", err)
	}

	var errs []error
	for index := 0; ; index++ {
		entry, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return &x.result, multierror.Wrap(append(errs, newError(ClassInput, -1, "", fmt.Errorf("reading entry %d: %w", index, err)))...)
		}

		err = x.entry(index, entry)
		if err == nil {
			continue
		}
		if !o.keepGoing {
			return &x.result, err
		}

		x.result.Failed++
		o.log.Errorf("entry %d %q failed - %s", index, entry.Name, err)
		o.reporter.Failed(index, entry.Name, err)
		errs = append(errs, err)
	}

	if err := x.finish(); err != nil {
		errs = append(errs, newError(ClassFilesystem, -1, "", err))
	}
	return &x.result, multierror.New(errs)
}

// display returns the path to show to the user for a relative entry path.
func (x *extractor) display(rel string) string {
	return filepath.Join(x.dest, filepath.FromSlash(rel))
}

func (x *extractor) entry(index int, e *Entry) error {
	rel, err := EnclosedName(e.Name)
	if err != nil {
		if x.strictPaths {
			return newError(ClassEntry, index, e.Name, err)
		}
		x.result.Skipped++
		x.log.Warnf("skipping entry %d %q - %s", index, e.Name, err)
		x.reporter.Skipped(index, e.Name, err)
		return nil
	}

	target := filepath.Join(x.root, filepath.FromSlash(rel))
	x.progress.Step("%s", rel)

	switch e.Kind {
	case KindDir:
		x.log.Debugf("entry %d: creating directory %s", index, target)
		if err := x.mkdir(target); err != nil {
			return newError(ClassFilesystem, index, e.Name, err)
		}
		d := x.delay(target)
		d.mode = e.Mode.Perm()
		d.restoreMode = true
		d.mod = e.Modified

		x.result.Directories++
		x.reporter.Directory(index, x.display(rel))
		return nil

	case KindSymlink:
		if target == x.root {
			return newError(ClassEntry, index, e.Name, ErrInvalidName)
		}
		// Link targets are resolved against the destination, so they cannot point outside of it.
		dest := filepath.Join(x.root, filepath.Clean("/"+filepath.FromSlash(e.Linkname)))
		x.log.Debugf("entry %d: linking %s to %s", index, target, dest)
		if err := x.mkdir(filepath.Dir(target)); err != nil {
			return newError(ClassFilesystem, index, e.Name, err)
		}
		if err := os.Symlink(dest, target); err != nil {
			return newError(ClassFilesystem, index, e.Name, fmt.Errorf("could not create link %s to %s: %w", target, dest, err))
		}
		x.result.Symlinks++
		x.reporter.Symlink(index, x.display(rel), dest)
		return nil
	}

	if target == x.root {
		return newError(ClassEntry, index, e.Name, ErrInvalidName)
	}
	x.log.Debugf("entry %d: writing %s (%d bytes)", index, target, e.Size)
	n, err := x.file(index, e, target)
	if err != nil {
		return err
	}
	x.result.Files++
	x.result.Bytes += n
	x.reporter.File(index, x.display(rel), n)
	return nil
}

// trackedReader remembers errors from the archive, to tell them apart
// from errors writing to disk when io.Copy fails.
type trackedReader struct {
	io.Reader
	err error
}

func (tr *trackedReader) Read(p []byte) (int, error) {
	n, err := tr.Reader.Read(p)
	if err != nil && err != io.EOF {
		tr.err = err
	}
	return n, err
}

func (x *extractor) file(index int, e *Entry, target string) (int64, error) {
	if err := x.mkdir(filepath.Dir(target)); err != nil {
		return 0, newError(ClassFilesystem, index, e.Name, err)
	}

	rc, err := e.Open()
	if err != nil {
		return 0, newError(ClassEntry, index, e.Name, fmt.Errorf("could not open: %w", err))
	}
	defer rc.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if x.noClobber {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	wf, err := os.OpenFile(target, flags, x.filemode)
	if err != nil {
		return 0, newError(ClassFilesystem, index, e.Name, err)
	}

	reader := &trackedReader{Reader: rc}
	n, err := io.Copy(x.progress.Writer(wf, e.Size), reader)
	if err != nil {
		wf.Close()
		if reader.err != nil {
			return n, newError(ClassEntry, index, e.Name, fmt.Errorf("could not read: %w", reader.err))
		}
		return n, newError(ClassFilesystem, index, e.Name, fmt.Errorf("could not write %s: %w", target, err))
	}
	if err := wf.Close(); err != nil {
		return n, newError(ClassFilesystem, index, e.Name, fmt.Errorf("closing %s: %w", target, err))
	}
	if e.Size >= 0 && n != e.Size {
		return n, newError(ClassEntry, index, e.Name, fmt.Errorf("archive indicates %d bytes, only %d written", e.Size, n))
	}

	if x.times && !e.Modified.IsZero() {
		if err := os.Chtimes(target, e.Modified, e.Modified); err != nil {
			return n, newError(ClassFilesystem, index, e.Name, fmt.Errorf("could not set time of file %s: %w", target, err))
		}
	}
	if x.permissions && e.Mode.Perm() != 0 {
		if err := chmod(target, os.FileMode(uint32(e.Mode.Perm()) & ^x.fumask)); err != nil {
			return n, newError(ClassFilesystem, index, e.Name, fmt.Errorf("could not chmod file %s: %w", target, err))
		}
	}
	return n, nil
}

// mkdir creates dir and its parents, unless already known to exist.
func (x *extractor) mkdir(dir string) error {
	if _, found := x.known[dir]; found {
		return nil
	}

	created, err := MkdirAll(dir, x.dirmode)
	for ix := len(created) - 1; ix >= 0; ix-- {
		x.known[created[ix]] = struct{}{}
		x.result.Created = append(x.result.Created, created[ix])
	}
	if err != nil {
		return err
	}
	x.known[dir] = struct{}{}
	return nil
}

func (x *extractor) delay(dir string) *delayed {
	d, found := x.dirs[dir]
	if !found {
		d = &delayed{path: dir}
		x.dirs[dir] = d
	}
	return d
}

// finish applies modes and times to directories, once all files are in place.
func (x *extractor) finish() error {
	if !x.permissions && !x.times {
		return nil
	}

	sorted := []*delayed{}
	for _, v := range x.dirs {
		sorted = append(sorted, v)
	}

	// Restored modes may make a directory not writable, and writing in a
	// directory changes its modification time. Both need to be applied from
	// the innermost directory to the outermost one.
	//
	// In reverse alphabetical order, a subdirectory is guaranteed to appear
	// before its parent directory.
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].path > sorted[j].path
	})

	var errs []error
	for _, dir := range sorted {
		if x.times && !dir.mod.IsZero() {
			if err := os.Chtimes(dir.path, dir.mod, dir.mod); err != nil {
				errs = append(errs, fmt.Errorf("could not set time of directory %s: %w", dir.path, err))
			}
		}
		if x.permissions && dir.restoreMode && dir.mode != 0 {
			if err := chmod(dir.path, os.FileMode(uint32(dir.mode) & ^x.dumask)); err != nil {
				errs = append(errs, fmt.Errorf("could not chmod directory %s: %w", dir.path, err))
			}
		}
	}
	return multierror.New(errs)
}

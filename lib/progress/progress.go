package progress

import (
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"
)

// Handler tracks the progress of a sequence of steps, each copying some bytes.
type Handler interface {
	// Step starts a new step, described by the printf like arguments.
	Step(fmt string, args ...interface{})
	// Writer returns a writer accounting for the bytes written in the current step.
	//
	// total is the number of bytes expected, or a negative value if unknown.
	// Closing the returned writer is not necessary: the caller remains responsible
	// for closing the writer passed in.
	Writer(writer io.Writer, total int64) io.Writer
	Done()
}

// Factory creates a Handler writing on w.
type Factory func(w io.Writer) Handler

type Discard struct{}

func (dp *Discard) Done()                                {}
func (dp *Discard) Step(fmt string, args ...interface{}) {}
func (dp *Discard) Writer(writer io.Writer, total int64) io.Writer {
	return writer
}

func NewDiscard(w io.Writer) Handler {
	return &Discard{}
}

// Bar is a Handler displaying a progress bar on the terminal.
//
// The bar is reset at each Writer call, and shows the bytes copied for the
// current step, prefixed by the step description.
type Bar pb.ProgressBar

func (bp *Bar) Step(fstring string, args ...interface{}) {
	bar := (*pb.ProgressBar)(bp)
	bar.Set("prefix", fmt.Sprintf(fstring+" ", args...))
	bar.Write()
}

func (bp *Bar) Writer(writer io.Writer, total int64) io.Writer {
	bar := (*pb.ProgressBar)(bp)
	bar.SetCurrent(0)
	if total < 0 {
		total = 0
	}
	bar.SetTotal(total)
	return bar.NewProxyWriter(writer)
}

func (bp *Bar) Done() {
	(*pb.ProgressBar)(bp).Finish()
}

// NewBar returns a Bar writing on w, generally os.Stderr.
func NewBar(w io.Writer) Handler {
	bar := pb.Full.New(0)
	bar.Set(pb.Bytes, true)
	bar.SetWriter(w)
	return (*Bar)(bar.Start())
}

var (
	_ Factory = NewDiscard
	_ Factory = NewBar
)

package logger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Debugf("loading %s", "config.toml")
	acc.Infof("loaded %d settings", 3)
	acc.Warnf("ignoring %s", "dset")
	acc.Errorf("failed")

	assert.Equal(t, []string{"loaded 3 settings"}, acc.Messages(InfoPriority))
	assert.Equal(t, []string{"ignoring dset"}, acc.Messages(WarnPriority))

	var out strings.Builder
	acc.Forward(DefaultLogger{Printer: func(format string, args ...interface{}) {
		fmt.Fprintf(&out, format+"\n", args...)
	}})
	assert.Equal(t, "[debug] loading config.toml\n[info] loaded 3 settings\n[warning] ignoring dset\n[error] failed\n", out.String())

	// Forward consumes the events.
	assert.Empty(t, acc.Retrieve())
	acc.Forward(Nil)
}

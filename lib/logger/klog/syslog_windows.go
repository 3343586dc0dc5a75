//go:build windows

package klog

import (
	"go.uber.org/zap/zapcore"
)

// No syslog on windows.
func syslogCores(name string, min zapcore.Level) []zapcore.Core {
	return nil
}

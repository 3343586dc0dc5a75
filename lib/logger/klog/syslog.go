//go:build !windows

package klog

import (
	"fmt"
	"log/syslog"

	"github.com/tchap/zapext/zapsyslog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Syslog(tag string, sl syslog.Priority, zl zapcore.Level) (zapcore.Core, error) {
	writer, err := syslog.New(sl|syslog.LOG_USER, tag)
	if err != nil {
		return nil, fmt.Errorf("could not initialize syslog - %w", err)
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zapsyslog.NewCore(zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl == zl }), encoder, writer), nil
}

// syslogCores returns one core per syslog priority at or above min.
//
// Priorities for which syslog cannot be reached are silently dropped.
func syslogCores(name string, min zapcore.Level) []zapcore.Core {
	cores := []zapcore.Core{}
	for _, level := range []struct {
		Syslog syslog.Priority
		Zap    zapcore.Level
	}{
		{Syslog: syslog.LOG_INFO, Zap: zapcore.InfoLevel},
		{Syslog: syslog.LOG_ERR, Zap: zapcore.ErrorLevel},
		{Syslog: syslog.LOG_WARNING, Zap: zapcore.WarnLevel},
		{Syslog: syslog.LOG_DEBUG, Zap: zapcore.DebugLevel},
	} {
		if level.Zap < min {
			continue
		}

		core, err := Syslog(name, level.Syslog, level.Zap)
		if err != nil {
			continue
		}
		cores = append(cores, core)
	}
	return cores
}

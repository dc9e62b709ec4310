// Copyright © 2018 One Concern

package kv

import (
	"go.uber.org/zap"
)

// pebbleLogger routes pebble logs to zap
type pebbleLogger struct {
	*zap.SugaredLogger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.SugaredLogger.Debugf(format, args...)
}

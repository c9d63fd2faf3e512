// Package common contains some data types and utilities used throughout
// the lms and ots packages.
//
// This file provides an injectable logging hook. Nothing in this module
// uses the logger to change control flow; it exists only so embedders can
// observe internal failures that the public API is required to collapse
// into a single outward error kind (see Verify's InternalCryptoError
// handling).
package common

import goLog "log"

// Logger is satisfied by anything that can format and record a message.
type Logger interface {
	Logf(format string, a ...interface{})
}

type dummyLogger struct{}

func (dummyLogger) Logf(format string, a ...interface{}) {}

type stdlibLogger struct{}

func (stdlibLogger) Logf(format string, a ...interface{}) {
	goLog.Printf(format, a...)
}

var log Logger = dummyLogger{}

// EnableLogging routes internal diagnostics to the standard log package.
func EnableLogging() {
	SetLogger(stdlibLogger{})
}

// SetLogger installs logger as the destination for internal diagnostics.
// Passing nil restores the no-op default.
func SetLogger(logger Logger) {
	if logger == nil {
		log = dummyLogger{}
		return
	}
	log = logger
}

// Logf records an internal diagnostic message with the installed logger.
func Logf(format string, a ...interface{}) {
	log.Logf(format, a...)
}

// Package monitoring holds the process-wide diagnostic logger and its
// output plumbing.
package monitoring

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// UseRotatingFile redirects the standard logger (and therefore the
// default Logf) to a size-rotated file, mirroring stderr as well so
// interactive runs stay readable. maxSizeMB and maxBackups follow
// lumberjack semantics; zero values fall back to 10 MB and 3 backups.
func UseRotatingFile(path string, maxSizeMB, maxBackups int) {
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}

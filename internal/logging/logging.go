// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init sets the log level and output. When file is empty, entries go to stderr;
// otherwise they go to a rotated log file.
func Init(level log.Level, file string, stderr io.Writer) {
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: file == "",
		FullTimestamp:    file != "",
	})
	if file == "" {
		log.SetOutput(stderr)
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.ToSlash(file),
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	})
}

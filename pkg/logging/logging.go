package logging

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

var logFile *os.File

// Init configures the process-wide logger. An empty path keeps output on
// stderr; otherwise logs append to the given file.
func Init(level, path string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log.SetLevel(lvl)
	log.SetReportCaller(lvl == log.DebugLevel)

	if path != "" {
		logFile, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		log.SetOutput(logFile)
	}

	log.Debug("logging initialized", "level", level, "file", path)
	return nil
}

// Close closes the log file if Init opened one.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

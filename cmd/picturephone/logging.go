package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "picturephone.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes the standard logger. Stdout and stderr belong to
// the alternate screen during a call, so log output goes to a file when
// -debug is set and is discarded otherwise. Returns the open log file,
// or nil when logging is disabled or unavailable.
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)

	// Rotate an oversized log instead of growing it forever
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir,
			fmt.Sprintf("picturephone-%s.log", time.Now().Format("20060102-150405")))
		os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Printf("--- picturephone started ---")
	return f
}

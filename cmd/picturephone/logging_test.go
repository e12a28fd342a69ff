package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	logFile := setupLogging(false)
	if logFile != nil {
		t.Error("expected nil log file when debug=false")
		logFile.Close()
	}

	if log.Writer() != io.Discard {
		t.Errorf("expected log output to be io.Discard, got %v", log.Writer())
	}
}

func TestSetupLoggingEnabledWithDebug(t *testing.T) {
	defer os.RemoveAll(logDir)

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file when debug=true")
	}
	defer logFile.Close()

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Error("expected logs directory to be created")
	}

	logPath := filepath.Join(logDir, logFileName)
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("expected log file to be created")
	}

	log.Println("test log message")

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected log file to contain content")
	}
}

func TestSetupLoggingRotation(t *testing.T) {
	defer os.RemoveAll(logDir)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("failed to create logs directory: %v", err)
	}

	logPath := filepath.Join(logDir, logFileName)

	largeFile, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("failed to create large log file: %v", err)
	}
	data := make([]byte, maxLogSize+1)
	if _, err := largeFile.Write(data); err != nil {
		t.Fatalf("failed to write to log file: %v", err)
	}
	largeFile.Close()

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file")
	}
	defer logFile.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("failed to read logs directory: %v", err)
	}
	rotatedFound := false
	for _, entry := range entries {
		if entry.Name() != logFileName && filepath.Ext(entry.Name()) == ".log" {
			rotatedFound = true
			break
		}
	}
	if !rotatedFound {
		t.Error("expected to find rotated log file")
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat new log file: %v", err)
	}
	if info.Size() > maxLogSize {
		t.Errorf("expected new log file under %d bytes, got %d", maxLogSize, info.Size())
	}
}

func TestSetupLoggingNoStdoutStderr(t *testing.T) {
	defer os.RemoveAll(logDir)

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected non-nil log file")
	}
	defer logFile.Close()

	if log.Writer() == os.Stdout {
		t.Error("log output should not be stdout")
	}
	if log.Writer() == os.Stderr {
		t.Error("log output should not be stderr")
	}
}

func TestBuildConfigRequiresOneMode(t *testing.T) {
	// All mode flags at their zero values
	*listenFlag, *connectFlag, *mirrorFlag = "", "", false
	defer func() { *mirrorFlag = false }()

	if _, err := buildConfig(); err == nil {
		t.Error("no mode selected, expected error")
	}

	*listenFlag = ":7777"
	*connectFlag = "localhost:7777"
	if _, err := buildConfig(); err == nil {
		t.Error("two modes selected, expected error")
	}
	*listenFlag, *connectFlag = "", ""

	*mirrorFlag = true
	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("mirror mode rejected: %v", err)
	}
	if !cfg.mirror {
		t.Error("mirror not set in config")
	}
}

func TestBuildConfigRejectsBadFlags(t *testing.T) {
	*mirrorFlag = true
	defer func() {
		*mirrorFlag = false
		*densityFlag = " .x?A@"
		*layoutFlag = "pip"
		*fpsFlag = 30
	}()

	*densityFlag = ""
	if _, err := buildConfig(); err == nil {
		t.Error("empty density ramp accepted")
	}
	*densityFlag = " .x?A@"

	*layoutFlag = "mosaic"
	if _, err := buildConfig(); err == nil {
		t.Error("unknown layout accepted")
	}
	*layoutFlag = "split"

	*fpsFlag = 0
	if _, err := buildConfig(); err == nil {
		t.Error("zero fps accepted")
	}
	*fpsFlag = 30

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("valid flags rejected: %v", err)
	}
	if cfg.view.Layout.String() != "split" {
		t.Errorf("layout = %s, want split", cfg.view.Layout)
	}
}

package logger

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	log, err := New(Config{})
	if err != nil {
		t.Fatalf("Failed to create logger: %s", err.Error())
	}
	if log.Level != logrus.InfoLevel {
		t.Fatalf("Unexpected default level: %s", log.Level)
	}
	log, _ = New(Config{Debug: true, JSON: true})
	if log.Level != logrus.DebugLevel {
		t.Fatalf("Debug not enabled: %s", log.Level)
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("Unexpected formatter: %T", log.Formatter)
	}
}

func TestLogFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "formdesk-log")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %s", err.Error())
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "logs", "formdesk.log")
	log, err := New(Config{File: path})
	if err != nil {
		t.Fatalf("Failed to create file logger: %s", err.Error())
	}
	log.WithField("form", "purchase-request").Info("Layout saved")

	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %s", err.Error())
	}
	if !strings.Contains(string(data), "Layout saved") || !strings.Contains(string(data), "form=purchase-request") {
		t.Fatalf("Unexpected log file content: %s", data)
	}
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %s", err.Error())
	}
	log.Info("Form created")
	if !strings.Contains(buf.String(), "Form created") {
		t.Fatalf("Log line not written to the given output: %q", buf.String())
	}
}

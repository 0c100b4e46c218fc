package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/logger"
)

func Test_New(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	log, err := logger.New("NODE", path)
	if err != nil {
		t.Fatalf("Should be able to construct the logger: %s", err)
	}

	log.Infow("startup", "status", "started")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Should be able to read the log file: %s", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("Should write a json entry: %s", err)
	}

	if entry["service"] != "NODE" {
		t.Logf("got: %v", entry["service"])
		t.Logf("exp: %v", "NODE")
		t.Fatalf("Should tag the entry with the service name.")
	}

	if entry["status"] != "started" {
		t.Logf("got: %v", entry["status"])
		t.Logf("exp: %v", "started")
		t.Fatalf("Should carry the structured fields.")
	}
}

//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// testAnalysis is the counting-experiment analysis shared by the loader tests.
const testAnalysis = "internal/analysis/testdata/hf_test.yaml"

var (
	// sharedHfconfPath holds the path to a shared hfconf binary built once for all tests.
	sharedHfconfPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getHfconfBinary returns the path to the hfconf binary, building it once if needed.
func getHfconfBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "hfconf-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		hfconfPath := filepath.Join(tempDir, "hfconf")
		buildCmd := exec.Command("go", "build", "-o", hfconfPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build hfconf: %v", err))
		}

		sharedHfconfPath = hfconfPath
	})

	return sharedHfconfPath
}

// runHfconfCommand runs the binary from the project root and returns its stdout.
func runHfconfCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getHfconfBinary(), args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nOutput: %s\nStderr: %s", cmd.String(), string(output), stderr)
		return "", err
	}
	return string(output), nil
}

package e2e

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// buildBinary compiles a command from cmd/ into a temp dir.
func buildBinary(t *testing.T, name string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	out := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", out, "./cmd/"+name)
	cmd.Dir = getProjectRoot()
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", output)
	return out
}

// isolatedEnv points the binaries at the sample catalog and keeps config,
// metrics and logs out of the real home directory.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return append(os.Environ(),
		"HOME="+home,
		"XDG_CACHE_HOME="+filepath.Join(home, ".cache"),
		"SERVICE_FINDER_CATALOG="+filepath.Join(getProjectRoot(), "data", "*.json"),
		"REDIS_URL=",
	)
}

func getProjectRoot() string {
	// Walk up until we find go.mod
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func sendJSONRPC(t *testing.T, w io.Writer, msg map[string]any) {
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = w.Write(append(data, '\n'))
	require.NoError(t, err)
}

func readJSONRPC(t *testing.T, r *bufio.Reader) map[string]any {
	done := make(chan []byte, 1)
	errCh := make(chan error, 1)

	go func() {
		line, err := r.ReadBytes('\n')
		if err != nil {
			errCh <- err
			return
		}
		done <- line
	}()

	select {
	case line := <-done:
		var resp map[string]any
		require.NoError(t, json.Unmarshal(line, &resp))
		return resp
	case err := <-errCh:
		require.NoError(t, err, "failed to read response")
		return nil
	case <-time.After(10 * time.Second):
		require.Fail(t, "timeout waiting for response")
		return nil
	}
}

//go:build integration

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := newRootCmd()
	cmd.SetArgs(args)
	execErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), execErr
}

func writeConfig(t *testing.T, downloadDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "settings:\n  download_dir: " + downloadDir + "\n  cookie_dir: " + filepath.Join(t.TempDir(), "cookies") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "tikgrab version")
}

func TestHelpListsCommands(t *testing.T) {
	output, err := runCLI(t, "help")
	require.NoError(t, err)
	for _, sub := range []string{"download", "checksum", "cookies", "cleanup", "config"} {
		assert.Contains(t, output, sub)
	}
}

func TestDownloadDirectMediaURL(t *testing.T) {
	payload := []byte("integration media payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	downloadDir := t.TempDir()
	cfgPath := writeConfig(t, downloadDir)

	_, err := runCLI(t, "--config", cfgPath, "--quiet", "download", server.URL+"/clip.mp4")
	require.NoError(t, err)

	entries, err := os.ReadDir(downloadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".mp4"))

	data, err := os.ReadFile(filepath.Join(downloadDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestChecksumCommand(t *testing.T) {
	payload := []byte("checksum me")
	file := filepath.Join(t.TempDir(), "media.mp4")
	require.NoError(t, os.WriteFile(file, payload, 0o644))

	sum := sha256.Sum256(payload)
	want := hex.EncodeToString(sum[:])

	output, err := runCLI(t, "checksum", file)
	require.NoError(t, err)
	assert.Contains(t, output, want)

	output, err = runCLI(t, "checksum", "--verify", want, file)
	require.NoError(t, err)
	assert.Contains(t, output, "OK")

	_, err = runCLI(t, "checksum", "--verify", strings.Repeat("0", 64), file)
	require.Error(t, err)
}

func TestCookiesRoundTrip(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	export := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(export, []byte(`[{"name":"sessionid","value":"abc","domain":".tiktok.com"}]`), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "cookies", "import", "main", export)
	require.NoError(t, err)

	output, err := runCLI(t, "--config", cfgPath, "cookies", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "main")

	output, err = runCLI(t, "--config", cfgPath, "cookies", "export", "main")
	require.NoError(t, err)
	assert.Contains(t, output, "sessionid")
	assert.Contains(t, output, "Netscape")

	_, err = runCLI(t, "--config", cfgPath, "cookies", "delete", "main")
	require.NoError(t, err)

	output, err = runCLI(t, "--config", cfgPath, "cookies", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No cookie profiles")
}

func TestConfigInitShowGetSet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := runCLI(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, cfgPath)

	_, err = runCLI(t, "--config", cfgPath, "config", "set", "max_retries", "7")
	require.NoError(t, err)

	output, err := runCLI(t, "--config", cfgPath, "config", "get", "max_retries")
	require.NoError(t, err)
	assert.Equal(t, "7", strings.TrimSpace(output))

	output, err = runCLI(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "max_retries")
	assert.Contains(t, output, "chunk_size")
}

func TestCleanupCommand(t *testing.T) {
	downloadDir := t.TempDir()
	cfgPath := writeConfig(t, downloadDir)

	keep := filepath.Join(downloadDir, "video.mp4")
	part := filepath.Join(downloadDir, "video.mp4.part")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(part, []byte("x"), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "cleanup")
	require.NoError(t, err)

	assert.FileExists(t, keep)
	assert.NoFileExists(t, part)
}

func TestDownloadTikTokURLWithoutExtractorFails(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	_, err := runCLI(t, "--config", cfgPath, "--quiet", "download", "https://www.tiktok.com/@user/video/1234567890123456789")
	require.Error(t, err)
}

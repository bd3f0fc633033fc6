package main_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/archlens/internal/domain"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "archlens-e2e")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "archlens")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(dir)
		panic("build failed: " + string(out))
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func archive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func serve(t *testing.T, bodies map[string][]byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// run executes the binary with a private scratch directory and returns
// stdout and the exit code.
func run(t *testing.T, scratch string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"ARCHLENS_SCRATCH_DIR="+scratch,
		"ARCHLENS_FETCH_ATTEMPTS=1",
		"ARCHLENS_LOG_LEVEL=error",
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return stdout.String(), exitCode
}

func TestE2E_Version(t *testing.T) {
	out, code := run(t, t.TempDir(), "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "archlens")
}

func TestE2E_AnalyzeJSON(t *testing.T) {
	base := serve(t, map[string][]byte{
		"/api.zip": archive(t, map[string]string{
			"requirements.txt": "fastapi==0.110.0\nuvicorn>=0.29\n",
			"app/main.py":      "from fastapi import FastAPI\napp = FastAPI()\n",
		}),
	})
	scratch := t.TempDir()

	out, code := run(t, scratch, "analyze", base+"/api.zip", "--json")
	require.Equal(t, 0, code, out)

	var res domain.Result[domain.AnalysisReport]
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.True(t, res.OK)
	require.NotNil(t, res.Value)
	assert.Equal(t, "Python", res.Value.Overview.Language)
	assert.Contains(t, res.Value.Overview.Frameworks, "FastAPI")
	assert.Equal(t, []string{"app/main.py", "requirements.txt"}, res.Value.Structure.Tree)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestE2E_CompareJSON(t *testing.T) {
	base := serve(t, map[string][]byte{
		"/v1.zip": archive(t, map[string]string{"a.txt": "one\n", "keep.txt": "same\n"}),
		"/v2.zip": archive(t, map[string]string{"b.txt": "two\n", "keep.txt": "same\n"}),
	})

	out, code := run(t, t.TempDir(), "compare", base+"/v1.zip", base+"/v2.zip", "--json")
	require.Equal(t, 0, code, out)

	var res domain.Result[domain.ComparisonResult]
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.True(t, res.OK)
	assert.Equal(t, []string{"b.txt"}, res.Value.AddedFiles)
	assert.Equal(t, []string{"a.txt"}, res.Value.RemovedFiles)
	assert.Empty(t, res.Value.ChangedFiles)
}

func TestE2E_UnsupportedFormatExitsNonZero(t *testing.T) {
	out, code := run(t, t.TempDir(), "analyze", "https://uploads.example.com/project.rar", "--json")
	assert.Equal(t, 1, code)

	var res domain.Result[domain.AnalysisReport]
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.OK)
	assert.Equal(t, domain.KindUnsupportedFormat, res.Error.Kind)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/viewrouter/internal/config"
	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/manifest"
	"github.com/vango-dev/viewrouter/pkg/router"
)

const routesYAML = `
routes:
  - path: ""
    component: shell
    children:
      - path: users/:id
        component: user
      - path: admin
        resolve: adminBundle
`

const ambiguousYAML = `
routes:
  - path: ":a"
    component: a
  - path: ":b"
    component: b
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Commit:     none")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", writeManifest(t, "routes.yaml", routesYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "3 routes, valid")

	_, err = run(t, "validate", writeManifest(t, "bad.yaml", ambiguousYAML))
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrAmbiguousRoute)

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, manifest.ErrSourceUnavailable)

	_, err = run(t, "validate")
	assert.ErrorIs(t, err, manifest.ErrSourceUnavailable)
}

func TestValidateUsesConfiguredManifest(t *testing.T) {
	path := writeManifest(t, "routes.yaml", routesYAML)
	t.Setenv("ROUTECTL_MANIFEST", path)

	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, path)
}

func TestTree(t *testing.T) {
	out, err := run(t, "tree", writeManifest(t, "routes.yaml", routesYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "routes\n")
	assert.Contains(t, out, "{*empty*}")
	assert.Contains(t, out, ":id")
	assert.Contains(t, out, "admin")
}

func TestMatch(t *testing.T) {
	path := writeManifest(t, "routes.yaml", routesYAML)

	out, err := run(t, "match", path, "/users/42")
	require.NoError(t, err)
	assert.Contains(t, out, "/users/42\n")
	assert.Contains(t, out, "{*empty*}/users/:id")
	assert.Contains(t, out, "params:\n  id = 42\n")

	out, err = run(t, "match", path, "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "{*empty*}/admin")

	_, err = run(t, "match", path, "/nowhere")
	assert.ErrorIs(t, err, router.ErrRouteNotMatched)
}

func TestMatchReportsResolverFailure(t *testing.T) {
	path := writeManifest(t, "routes.yaml", routesYAML+`  - path: full
    component: page
    controller: pageController
    resolve: pageBundle
`)

	out, err := run(t, "match", path, "/full")
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrEmptyResolution)
	assert.Equal(t, "R013", errors.CodeOf(err))
	assert.Empty(t, out)

	_, err = run(t, "match", path, "/admin")
	require.NoError(t, err)
}

func TestMatchBasePathFromEnv(t *testing.T) {
	path := writeManifest(t, "routes.yaml", routesYAML)
	t.Setenv("ROUTECTL_BASE_PATH", "/app")

	out, err := run(t, "match", path, "/app/users/7")
	require.NoError(t, err)
	assert.Contains(t, out, "id = 7")

	_, err = run(t, "match", path, "/users/7")
	assert.ErrorIs(t, err, router.ErrBasePathMismatch)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("ROUTECTL_LOG_LEVEL", "loud")
	_, err := run(t, "tree", writeManifest(t, "routes.yaml", routesYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C003")
}

func TestServe(t *testing.T) {
	m, err := manifest.Parse([]byte(routesYAML), manifest.FormatYAML)
	require.NoError(t, err)

	cfg := config.New()
	cfg.Inspect.StartURL = "/users/3"
	a := &app{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, m, ln) }()

	base := "http://" + ln.Addr().String()
	var state struct {
		URL    string            `json:"url"`
		Params map[string]string `json:"params"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&state) == nil
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "/users/3", state.URL)
	assert.Equal(t, "3", state.Params["id"])

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "viewrouter_transitions_total")
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/internal/keys"
	"github.com/mithrel/sheetsite/pkg/api"
)

// writeConfigTOML points the dir source at the sheets fixtures.
func writeConfigTOML(t *testing.T, dbURL string) string {
	t.Helper()
	fixtures, err := filepath.Abs(filepath.Join("..", "sheets", "testdata"))
	require.NoError(t, err)
	dir := t.TempDir()
	if dbURL == "" {
		dbURL = "mem://"
	}
	cfg := filepath.Join(dir, "config.toml")
	body := `data_dir = "` + filepath.ToSlash(dir) + `"
db_url = "` + filepath.ToSlash(dbURL) + `"

[source]
mode = "dir"
dir = "` + filepath.ToSlash(fixtures) + `"

[log]
level = "error"
`
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return cfg
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if cfg != "" {
		args = append([]string{"--config", cfg}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductListJSON(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "product", "list", "-o", "json")
	require.NoError(t, err)

	var ps []api.Product
	require.NoError(t, json.Unmarshal([]byte(out), &ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "1001", ps[0].Code)
	assert.Equal(t, "A-7", ps[1].Code)
}

func TestProductListCategoryNDJSON(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "product", "list", "--category", " snacks ", "-o", "ndjson")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"code":"A-7"`)
}

func TestProductShowPlain(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "product", "show", "1001", "-o", "plain", "--lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "Oolong Tea")
	assert.Contains(t, out, "12 box")
	assert.Contains(t, out, "Good tea")
}

func TestProductShowMissing(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	_, err := run(t, cfg, "product", "show", "nope", "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, content.ErrProductNotFound))
}

func TestProductSearch(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "product", "search", "cookies", "--lang", "en", "-o", "json")
	require.NoError(t, err)
	var ps []api.Product
	require.NoError(t, json.Unmarshal([]byte(out), &ps))
	require.Len(t, ps, 1)
	assert.Equal(t, "A-7", ps[0].Code)
}

func TestInvalidOutputAndLang(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	_, err := run(t, cfg, "product", "list", "-o", "xml")
	require.ErrorContains(t, err, "invalid --output")
	_, err = run(t, cfg, "product", "list", "--lang", "fr")
	require.ErrorContains(t, err, "invalid --lang")
}

func TestSheetDump(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "sheet", "dump", "Content", "-o", "json")
	require.NoError(t, err)
	var sh api.Sheet
	require.NoError(t, json.Unmarshal([]byte(out), &sh))
	assert.Equal(t, "Content", sh.Name)
	assert.Len(t, sh.Rows, 4)

	_, err = run(t, cfg, "sheet", "dump", "Secret")
	require.ErrorContains(t, err, "unknown tab")
}

func TestPageRender(t *testing.T) {
	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "page", "render", "Content", "--lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Galaxy Trading")

	out, err = run(t, cfg, "page", "render", "product", "--id", "1001", "--lang", "en", "--body")
	require.NoError(t, err)
	assert.NotContains(t, out, "<html")
	assert.Contains(t, out, "Oolong Tea")

	out, err = run(t, cfg, "page", "render", "About Us")
	require.ErrorContains(t, err, "status 502")
	assert.Contains(t, out, "Failed to load page data.")

	_, err = run(t, cfg, "page", "render", "Nowhere")
	require.ErrorContains(t, err, "unknown page")
}

func TestCacheRefreshAndStats(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "snap.db")
	cfg := writeConfigTOML(t, dbURL)

	out, err := run(t, cfg, "cache", "refresh")
	// Only Content exists in the fixtures; the other tabs fail.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "About Us")
	assert.Contains(t, out, "Refreshed 6 tabs")

	out, err = run(t, cfg, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	var infos []api.SnapshotInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "products", infos[0].Kind)
	assert.Equal(t, 2, infos[0].Items)
	assert.Equal(t, "sheet", infos[1].Kind)
	assert.Equal(t, "Content", infos[1].Name)

	out, err = run(t, cfg, "cache", "stats", "--stale", "2000-01-01", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	out, err = run(t, cfg, "cache", "refresh", "--older-than", "2000-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Refreshed 0 snapshots")
}

func TestStale(t *testing.T) {
	now := time.Now()
	infos := []api.SnapshotInfo{
		{Name: "old", FetchedAt: now.Add(-3 * time.Hour)},
		{Name: "new", FetchedAt: now.Add(-time.Minute)},
	}
	got := stale(infos, now.Add(-time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].Name)
}

func TestConfigGenerateAndCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	out, err := run(t, "", "config", "generate", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = run(t, "", "config", "generate", "-o", path)
	require.ErrorContains(t, err, "already exists")

	out, err = run(t, "", "config", "generate", "-o", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "already up to date")

	// Defaults lack the spreadsheet id and feed URL.
	_, err = run(t, path, "config", "check")
	require.ErrorContains(t, err, "source.spreadsheet_id is required")

	out, err = run(t, writeConfigTOML(t, ""), "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Config OK")
}

func TestCompletionBash(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "sheetsite")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := writeConfigTOML(t, "")
	out, err := run(t, cfg, "health", "--url", srv.URL+"/healthz")
	require.NoError(t, err)
	assert.Contains(t, out, " 200 in ")

	_, err = run(t, cfg, "health", "--url", srv.URL+"/missing")
	require.ErrorContains(t, err, "unhealthy: status 404")
}

func TestLocalURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/healthz", localURL(":8080", false))
	assert.Equal(t, "https://127.0.0.1:8443/healthz", localURL("127.0.0.1:8443", true))
	assert.Equal(t, "http://localhost:9000/healthz", localURL("9000", false))
}

func TestWatchDir(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	require.NoError(t, watchDir(ctx, dir, zap.NewNop(), func(name string) { changed <- name }))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Content.json"), []byte("{}"), 0o600))

	select {
	case name := <-changed:
		assert.Equal(t, "Content.json", filepath.Base(name))
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
}

func TestWatchDirMissing(t *testing.T) {
	err := watchDir(context.Background(), filepath.Join(t.TempDir(), "gone"), zap.NewNop(), func(string) {})
	require.Error(t, err)
}

func appendingEditor(t *testing.T, text string) {
	t.Helper()
	ed := filepath.Join(t.TempDir(), "ed.sh")
	script := "#!/bin/sh\nprintf '" + text + "' >> \"$1\"\n"
	require.NoError(t, os.WriteFile(ed, []byte(script), 0o700))
	t.Setenv("VISUAL", ed)
}

func TestConfigEdit(t *testing.T) {
	cfg := writeConfigTOML(t, "")

	appendingEditor(t, `\n[search]\nlimit = 5\n`)
	out, err := run(t, cfg, "config", "edit")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+cfg)

	body, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(body), "limit = 5")
}

func TestConfigEditInvalid(t *testing.T) {
	cfg := writeConfigTOML(t, "")

	appendingEditor(t, `\n[search]\nlimit = 0\n`)
	_, err := run(t, cfg, "config", "edit")
	require.ErrorContains(t, err, "search.limit must be greater than 0")
}

func TestConfigEditUnchanged(t *testing.T) {
	cfg := writeConfigTOML(t, "")

	appendingEditor(t, ``)
	out, err := run(t, cfg, "config", "edit")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes")
}

func TestConfigSecret(t *testing.T) {
	keyring.MockInit()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("tok-123\n"))
	cmd.SetArgs([]string{"config", "secret", "set", "admin"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"keyring:admin"`)

	got, err := keys.Resolve(&keys.KeyringStore{}, "keyring:admin")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)

	out2, err := run(t, "", "config", "secret", "delete", "admin")
	require.NoError(t, err)
	assert.Contains(t, out2, "Deleted admin")

	_, err = run(t, "", "config", "secret", "delete", "admin")
	require.ErrorIs(t, err, keys.ErrSecretNotFound)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	umeeChain = `{"name":"Umee","chainId":"umee-1","chain_type":"cosmos","assets":[{"symbol":"UMEE","decimals":6}]}`
	ethChain  = `{"name":"Ethereum","chainId":"1","chain_type":"evm","assets":[{"symbol":"USDC","decimals":6}]}`
)

// workspace is a registry checkout with its own config and store.
type workspace struct {
	root        string
	config      string
	chainsDir   string
	projectsDir string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()

	ws := &workspace{
		root:        root,
		config:      filepath.Join(root, "regsync.yaml"),
		chainsDir:   filepath.Join(root, "blockchains"),
		projectsDir: filepath.Join(root, "projects"),
	}

	cfg := "chains_dir: " + ws.chainsDir + "\n" +
		"projects_dir: " + ws.projectsDir + "\n" +
		"store:\n" +
		"  url: file:" + filepath.Join(root, "store", "registry.db") + "\n" +
		"  connect_delay: 1ms\n" +
		"log:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0o644))

	ws.write(t, ws.chainsDir, "umee.json", umeeChain)
	ws.write(t, ws.chainsDir, "ethereum.json", ethChain)
	ws.write(t, ws.projectsDir, "umee.json", `{"name":"Umee","website":"https://umee.cc"}`)
	return ws
}

func (ws *workspace) write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (ws *workspace) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return execute(t, stdin, append([]string{"--config", ws.config}, args...)...)
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	opts := &RootOptions{newRunID: func() string { return "test-run" }}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestPlan_Golden(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "plan")
	require.NoError(t, res.err, res.stderr)

	goldie.New(t).Assert(t, "plan", []byte(res.stdout))

	// A plan never writes.
	status := ws.run(t, "", "status", "--format", "json")
	require.NoError(t, status.err)
	assert.Contains(t, status.stdout, `"chains": 0`)
}

func TestSync_Golden(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "sync")
	require.NoError(t, res.err, res.stderr)
	goldie.New(t).Assert(t, "sync", []byte(res.stdout))

	ws.write(t, ws.chainsDir, "umee.json", strings.Replace(umeeChain, `"name":"Umee"`, `"name":"Umee Network"`, 1))
	require.NoError(t, os.Remove(filepath.Join(ws.projectsDir, "umee.json")))
	ws.write(t, ws.projectsDir, "osmosis.json", `{"name":"Osmosis"}`)

	res = ws.run(t, "", "sync")
	require.NoError(t, res.err, res.stderr)
	goldie.New(t).Assert(t, "sync_changes", []byte(res.stdout))
}

func TestSync_SecondRunIsEmpty(t *testing.T) {
	ws := newWorkspace(t)

	require.NoError(t, ws.run(t, "", "sync").err)

	res := ws.run(t, "", "plan", "--format", "yaml")
	require.NoError(t, res.err)

	var summary struct {
		DryRun   bool `yaml:"dryRun"`
		Outcomes []struct {
			Kind   string `yaml:"kind"`
			Counts struct {
				Insert int `yaml:"insert"`
				Update int `yaml:"update"`
				Delete int `yaml:"delete"`
			} `yaml:"counts"`
		} `yaml:"outcomes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &summary))

	assert.True(t, summary.DryRun)
	require.Len(t, summary.Outcomes, 3)
	for _, o := range summary.Outcomes {
		assert.Zero(t, o.Counts.Insert+o.Counts.Update+o.Counts.Delete, o.Kind)
	}
}

func TestSync_ConfirmDeclined(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "n\n", "sync", "--confirm")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Plan (run test-run)")
	assert.Contains(t, res.stdout, "Aborted.")

	status := ws.run(t, "", "status", "--format", "json")
	require.NoError(t, status.err)
	assert.Contains(t, status.stdout, `"projects": 0`)
}

func TestSync_ConfirmAccepted(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "y\n", "sync", "--confirm")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "✓ 5 inserted, 0 updated, 0 deleted")
}

func TestSync_ConfirmNeedsTextFormat(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "y\n", "sync", "--confirm", "--format", "json")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--confirm cannot be used with --format json")
	assert.Empty(t, res.stdout)

	status := ws.run(t, "", "status", "--format", "json")
	require.NoError(t, status.err)
	assert.Contains(t, status.stdout, `"chains": 0`)
}

func TestSync_ParseErrorExitsNonZero(t *testing.T) {
	ws := newWorkspace(t)
	ws.write(t, ws.chainsDir, "broken.json", `{"chainId":`)

	res := ws.run(t, "", "sync")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "broken.json")
	assert.Contains(t, res.stdout, "chains: failed")
	assert.Contains(t, res.stdout, "projects: applied")
}

func TestSync_DirectoryOverrides(t *testing.T) {
	ws := newWorkspace(t)
	empty := filepath.Join(ws.root, "empty")

	res := ws.run(t, "", "sync", "--chains-dir", empty)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "chains: skipped, no local records")
	assert.Contains(t, res.stdout, "assets: skipped, no local records")
}

func TestValidate_Golden(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "validate", filepath.Join("testdata", "validate"))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "2 of 3 chain files are invalid")

	goldie.New(t).Assert(t, "validate", []byte(res.stdout))
}

func TestValidate_JSON(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "validate", "--format", "json", filepath.Join("testdata", "validate"))
	require.Error(t, res.err)

	var out validateResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "v1", out.SchemaVersion)
	assert.Equal(t, 1, out.Valid)
	assert.Equal(t, 2, out.Invalid)
	require.Len(t, out.Reports, 3)
	assert.Equal(t, "truncated.json", out.Reports[2].File)
}

func TestStatus(t *testing.T) {
	ws := newWorkspace(t)
	require.NoError(t, ws.run(t, "", "sync").err)

	res := ws.run(t, "", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Registry status (umee-wallet)")
	assert.Contains(t, res.stdout, "chains: 2")
	assert.Contains(t, res.stdout, "assets: 2")
	assert.Contains(t, res.stdout, "projects: 1")

	res = ws.run(t, "", "status", "--format", "toml")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `project = "umee-wallet"`)
	assert.Contains(t, res.stdout, "chains = 2")
}

func TestRoot_InvalidFormat(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "status", "--format", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid format")
}

func TestRoot_LogLevelFlag(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run(t, "", "plan", "--log-level", "debug")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "level=DEBUG")
	assert.Contains(t, res.stderr, "run_id=test-run")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "file:.regsync/registry.db", redact("file:.regsync/registry.db"))
	assert.Equal(t, "libsql://db.turso.io?authToken=redacted", redact("libsql://db.turso.io?authToken=secret"))
}

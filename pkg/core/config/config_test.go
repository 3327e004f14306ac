package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults_AppliesAbsentFields(t *testing.T) {
	var cfg Config
	SetDefaults(&cfg, map[string]bool{})

	assert.Equal(t, DefaultBindAddr, cfg.BindAddr)
	assert.Equal(t, DefaultMaximumConnections, cfg.MaximumConnections)
	assert.Equal(t, DefaultFileOutputPath, cfg.FileOutputPath)
	assert.Equal(t, DefaultSynapseCommand(), cfg.SynapseCommand)
}

func TestSetDefaults_RespectsPresentFields(t *testing.T) {
	cfg := Config{BindAddr: "127.0.0.1"}
	SetDefaults(&cfg, map[string]bool{"bind_addr": true})
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
}

func TestSetDefaults_LegacyReloadCmdFmtAlias(t *testing.T) {
	cfg := Config{ReloadCmdFmt: "custom {haproxy_path}"}
	SetDefaults(&cfg, map[string]bool{"reload_cmd_fmt": true})
	assert.Equal(t, "custom {haproxy_path}", cfg.HAProxyReloadCmdFmt)
}

func TestValidate_Valid(t *testing.T) {
	var cfg Config
	SetDefaults(&cfg, map[string]bool{})
	assert.NoError(t, Validate(&cfg))
}

func TestValidate_InvalidPort(t *testing.T) {
	var cfg Config
	SetDefaults(&cfg, map[string]bool{})
	cfg.HacheckPort = 0
	assert.Error(t, Validate(&cfg))
}

func TestValidate_NoSynapseCommand(t *testing.T) {
	var cfg Config
	SetDefaults(&cfg, map[string]bool{"synapse_command": true})
	cfg.SynapseCommand = nil
	assert.Error(t, Validate(&cfg))
}

func TestFormatCmd(t *testing.T) {
	result, err := FormatCmd("{haproxy_path} -f {haproxy_config_path}", map[string]string{
		"haproxy_path":        "/usr/bin/haproxy",
		"haproxy_config_path": "/etc/haproxy.cfg",
	})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/haproxy -f /etc/haproxy.cfg", result)
}

func TestFormatCmd_MissingParameter(t *testing.T) {
	_, err := FormatCmd("{unknown_field}", map[string]string{})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bind_addr": "10.0.0.1", "stats_port": 3333}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", cfg.BindAddr)
	assert.Equal(t, 3333, cfg.StatsPort)
	assert.Equal(t, DefaultMaximumConnections, cfg.MaximumConnections)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadZookeeperTopology(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- [zk1.example.com, 2181]
- [zk2.example.com, 2181]
`), 0644))

	hosts, err := LoadZookeeperTopology(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zk1.example.com:2181", "zk2.example.com:2181"}, hosts)
}

func TestLoadZookeeperTopology_MalformedEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- [zk1.example.com]
`), 0644))

	_, err := LoadZookeeperTopology(path)
	assert.Error(t, err)
}

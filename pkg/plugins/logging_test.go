package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

func TestLogging_Disabled(t *testing.T) {
	p := NewLogging("svc", namespace.Namespace{}, config.Config{})
	assert.Equal(t, Contribution{}, p.Contribute())
}

func TestLogging_GlobalEnabled(t *testing.T) {
	rate := 10
	cfg := config.Config{LuaDir: "/lua", Logging: config.LoggingDefault{Enabled: true, SampleRate: &rate}}
	p := NewLogging("svc", namespace.Namespace{}, cfg)
	c := p.Contribute()

	require.Len(t, c.Global, 2)
	assert.Equal(t, "lua-load /lua/log_requests.lua", c.Global[0])
	assert.Equal(t, "setenv sample_rate 10", c.Global[1])
	assert.Equal(t, []string{"http-request lua.init_logging", "http-request lua.log_provenance"}, c.Backend)
}

func TestLogging_PerNamespaceOverridesGlobal(t *testing.T) {
	cfg := config.Config{LuaDir: "/lua", Logging: config.LoggingDefault{Enabled: false}}
	decl := namespace.Namespace{
		Plugins: map[string]map[string]interface{}{
			"logging": {"enabled": true, "sample_rate": float64(5)},
		},
	}

	p := NewLogging("svc", decl, cfg)
	c := p.Contribute()

	require.Len(t, c.Global, 2)
	assert.Equal(t, "setenv sample_rate 5", c.Global[1])
}

func TestLogging_PerNamespaceDisabledFallsBackToGlobal(t *testing.T) {
	cfg := config.Config{LuaDir: "/lua", Logging: config.LoggingDefault{Enabled: true}}
	decl := namespace.Namespace{
		Plugins: map[string]map[string]interface{}{
			"logging": {"enabled": false},
		},
	}

	p := NewLogging("svc", decl, cfg)
	c := p.Contribute()
	assert.NotEmpty(t, c.Global)
}

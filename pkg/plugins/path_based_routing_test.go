package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

func TestPathBasedRouting_Disabled(t *testing.T) {
	p := NewPathBasedRouting("svc", namespace.Namespace{}, config.Config{})
	assert.Equal(t, Contribution{}, p.Contribute())
}

func TestPathBasedRouting_GlobalEnabled(t *testing.T) {
	cfg := config.Config{LuaDir: "/lua", PathBasedRouting: config.PluginToggle{Enabled: true}}
	p := NewPathBasedRouting("svc", namespace.Namespace{}, cfg)
	c := p.Contribute()

	require.Len(t, c.Global, 1)
	assert.Equal(t, "lua-load /lua/path_based_routing.lua", c.Global[0])
	assert.Equal(t, []string{
		"http-request set-var(txn.backend_name) lua.get_backend",
		"use_backend %[var(txn.backend_name)]",
	}, c.Frontend)
}

func TestPathBasedRouting_PerNamespaceEnabled(t *testing.T) {
	cfg := config.Config{LuaDir: "/lua"}
	decl := namespace.Namespace{
		Plugins: map[string]map[string]interface{}{
			"path_based_routing": {"enabled": true},
		},
	}
	p := NewPathBasedRouting("svc", decl, cfg)
	assert.NotEmpty(t, p.Contribute().Global)
}

package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

func TestSourceRequired_Disabled(t *testing.T) {
	p := NewSourceRequired("svc", namespace.Namespace{}, config.Config{})
	assert.Equal(t, Contribution{}, p.Contribute())
}

func TestSourceRequired_Enabled(t *testing.T) {
	cfg := config.Config{LuaDir: "/lua"}
	decl := namespace.Namespace{
		Plugins: map[string]map[string]interface{}{
			"source_required": {"enabled": true},
		},
	}
	p := NewSourceRequired("svc", decl, cfg)
	c := p.Contribute()

	assert.Equal(t, []string{"lua-load /lua/add_source_header.lua"}, c.Global)
	assert.Equal(t, []string{"http-request lua.add_source_header"}, c.Backend)
	assert.True(t, c.PrependBackend)
}

func TestSourceRequired_NoOperatorWideDefault(t *testing.T) {
	// source_required has no operator-wide default toggle, unlike logging
	// and path_based_routing: it is opt-in per namespace only.
	cfg := config.Config{LuaDir: "/lua"}
	p := NewSourceRequired("svc", namespace.Namespace{}, cfg)
	assert.Equal(t, Contribution{}, p.Contribute())
}

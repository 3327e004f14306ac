package plugins

import (
	"fmt"
	"path/filepath"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// pathBasedRouting loads a Lua module that computes a backend name from
// the request path and routes to it (spec §4.3 "path_based_routing").
type pathBasedRouting struct {
	luaDir  string
	enabled bool
}

// NewPathBasedRouting constructs the path_based_routing plugin.
func NewPathBasedRouting(_ string, decl namespace.Namespace, cfg config.Config) Plugin {
	svcOpts, svcHasIt := decl.Plugins["path_based_routing"]
	svcEnabled := svcHasIt && boolField(svcOpts, "enabled")
	globalEnabled := cfg.PathBasedRouting.Enabled

	return &pathBasedRouting{
		luaDir:  cfg.LuaDir,
		enabled: svcEnabled || globalEnabled,
	}
}

func (p *pathBasedRouting) Contribute() Contribution {
	if !p.enabled {
		return Contribution{}
	}
	return Contribution{
		Global: []string{fmt.Sprintf("lua-load %s", filepath.Join(p.luaDir, "path_based_routing.lua"))},
		Frontend: []string{
			"http-request set-var(txn.backend_name) lua.get_backend",
			"use_backend %[var(txn.backend_name)]",
		},
	}
}

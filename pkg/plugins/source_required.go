package plugins

import (
	"fmt"
	"path/filepath"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// sourceRequired loads a Lua module that stamps an origin header on every
// backend request (spec §4.3 "source_required"). Its backend contribution
// is prepended, not appended: it must run before any other plugin's
// request-editing rules so those rules see the stamped header.
type sourceRequired struct {
	luaDir  string
	enabled bool
}

// NewSourceRequired constructs the source_required plugin.
func NewSourceRequired(_ string, decl namespace.Namespace, cfg config.Config) Plugin {
	svcOpts, svcHasIt := decl.Plugins["source_required"]
	enabled := svcHasIt && boolField(svcOpts, "enabled")

	return &sourceRequired{
		luaDir:  cfg.LuaDir,
		enabled: enabled,
	}
}

func (p *sourceRequired) Contribute() Contribution {
	if !p.enabled {
		return Contribution{}
	}
	return Contribution{
		Global:         []string{fmt.Sprintf("lua-load %s", filepath.Join(p.luaDir, "add_source_header.lua"))},
		Backend:        []string{"http-request lua.add_source_header"},
		PrependBackend: true,
	}
}

package plugins

import (
	"fmt"
	"path/filepath"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// logging loads the request-logging Lua module and installs backend hooks
// when enabled, either per-namespace or operator-wide (spec §4.3
// "logging"). The plugin is on when either toggle is on: a per-namespace
// enabled=false does not turn off an operator-wide default. When the
// per-namespace toggle is on, its options (e.g. sample_rate) are used
// instead of the operator-wide ones.
type logging struct {
	luaDir     string
	enabled    bool
	sampleRate *int
}

// NewLogging constructs the logging plugin.
func NewLogging(_ string, decl namespace.Namespace, cfg config.Config) Plugin {
	svcOpts, svcHasLogging := decl.Plugins["logging"]
	svcEnabled := svcHasLogging && boolField(svcOpts, "enabled")
	globalEnabled := cfg.Logging.Enabled

	l := &logging{
		luaDir:  cfg.LuaDir,
		enabled: svcEnabled || globalEnabled,
	}

	switch {
	case svcEnabled:
		l.sampleRate = intFieldPtr(svcOpts, "sample_rate")
	case globalEnabled:
		l.sampleRate = cfg.Logging.SampleRate
	}

	return l
}

func (p *logging) Contribute() Contribution {
	if !p.enabled {
		return Contribution{}
	}

	global := []string{fmt.Sprintf("lua-load %s", filepath.Join(p.luaDir, "log_requests.lua"))}
	if p.sampleRate != nil {
		global = append(global, fmt.Sprintf("setenv sample_rate %d", *p.sampleRate))
	}

	return Contribution{
		Global: global,
		Backend: []string{
			"http-request lua.init_logging",
			"http-request lua.log_provenance",
		},
	}
}

// boolField reads a bool-shaped value out of a plugin's per-namespace
// options map, defaulting to false when missing or not a bool.
func boolField(opts map[string]interface{}, key string) bool {
	v, ok := opts[key].(bool)
	return ok && v
}

// intFieldPtr reads an int-shaped value (JSON numbers decode as float64)
// out of a plugin's per-namespace options map, returning nil when absent.
func intFieldPtr(opts map[string]interface{}, key string) *int {
	raw, ok := opts[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	default:
		return nil
	}
}

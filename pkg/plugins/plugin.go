// Package plugins implements the ordered set of HAProxy configuration
// transformations named in spec §4.3. Each plugin contributes ordered
// directive strings to up to four configuration blocks and independently
// controls whether its contribution is prepended or appended to each
// block.
package plugins

import (
	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// Contribution is the struct-of-arrays a plugin returns: four ordered
// directive lists and four independent prepend flags. This collapses the
// source's class hierarchy to a single value — a fold, not inheritance
// (spec §9 design note).
type Contribution struct {
	Global, Defaults, Frontend, Backend                 []string
	PrependGlobal, PrependDefaults, PrependFrontend, PrependBackend bool
}

// Plugin is a named configuration transformation.
type Plugin interface {
	Contribute() Contribution
}

// Factory constructs a Plugin bound to one namespace's declaration and the
// operator-wide configuration.
type Factory func(serviceName string, decl namespace.Namespace, cfg config.Config) Plugin

// NamedFactory pairs a plugin's registry name with its constructor. The
// registry is a slice, not a map: iteration order is part of the external
// contract (spec §4.3, §9 "ordering contract") because it determines
// routing-rule order when multiple plugins enable frontend contributions.
type NamedFactory struct {
	Name    string
	Factory Factory
}

// Registry is the fixed, ordered list of built-in plugins. fault_injection
// always runs first so its tarpit rule is the most significant low-level
// concern; proxied_through/logging/path_based_routing/source_required
// follow in the order the original source's PLUGIN_REGISTRY declares them.
var Registry = []NamedFactory{
	{Name: "fault_injection", Factory: NewFaultInjection},
	{Name: "proxied_through", Factory: NewProxiedThrough},
	{Name: "logging", Factory: NewLogging},
	{Name: "path_based_routing", Factory: NewPathBasedRouting},
	{Name: "source_required", Factory: NewSourceRequired},
}

// dedupAppend appends items from src to dst that are not already present
// in dst, implementing spec invariant #5 ("no directive string appears
// twice" per block). Order of first appearance is preserved.
func dedupAppend(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[d] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

// dedupPrepend prepends items from src that are not already present in
// dst, preserving src's relative order.
func dedupPrepend(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[d] = true
	}
	fresh := make([]string, 0, len(src))
	for _, s := range src {
		if !seen[s] {
			fresh = append(fresh, s)
			seen[s] = true
		}
	}
	return append(fresh, dst...)
}

// ApplyBlock merges one directive block of a Contribution into dst,
// honoring the prepend flag and deduplicating against dst's existing
// contents (spec §4.3, §4.4 step 7).
func ApplyBlock(dst []string, opts []string, prepend bool) []string {
	if prepend {
		return dedupPrepend(dst, opts)
	}
	return dedupAppend(dst, opts)
}

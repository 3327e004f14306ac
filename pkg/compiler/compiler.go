package compiler

import (
	"fmt"
	"sort"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
	"synapse-tools-go/pkg/plugins"
	"synapse-tools-go/pkg/topology"
)

// Recorder observes compile-time events for metrics (spec §11). A nil
// Recorder is valid; every method is a no-op check at the call site.
type Recorder interface {
	NamespaceProcessed()
	NamespaceSkipped()
	BackendEmitted()
}

// Compile builds the full configuration Document from declared namespaces,
// implementing spec §4.4 steps 1-8 in order: base document, per-namespace
// base watcher, chaos overrides, backend descriptor enumeration, frontend
// binding, secondary proxy listener, plugin contributions, and frontend ACL
// emission.
//
// topo resolves topology depth and the host's current coordinate; its
// CurrentLocation is reused as the chaos grouping lookup, since both read
// one coordinate file per named dimension (spec §4.2, §4.4 step 2).
func Compile(
	cfg config.Config,
	zkTopology []string,
	namespaces []namespace.Named,
	topo topology.Source,
	rec Recorder,
) (*Document, error) {
	doc, err := generateBaseDocument(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating base document: %w", err)
	}

	available := topo.AvailableLocationTypes()

	for _, n := range namespaces {
		if !n.Decl.Enabled() {
			recordSkip(rec)
			continue
		}

		discoverType := n.Decl.ResolvedDiscover()
		advertiseTypes := topology.FilterAndSortAdvertise(n.Decl.ResolvedAdvertise(), available)
		if !topology.Contains(advertiseTypes, discoverType) {
			recordSkip(rec)
			continue
		}

		if err := compileNamespace(doc, cfg, n.Name, n.Decl, discoverType, advertiseTypes, available, zkTopology, topo, rec); err != nil {
			return nil, fmt.Errorf("compiling namespace %s: %w", n.Name, err)
		}
		recordProcessed(rec)
	}

	return doc, nil
}

func recordSkip(rec Recorder) {
	if rec != nil {
		rec.NamespaceSkipped()
	}
}

func recordProcessed(rec Recorder) {
	if rec != nil {
		rec.NamespaceProcessed()
	}
}

// compileNamespace emits every backend descriptor for one namespace plus,
// when it has a listener, the secondary Nginx proxy, plugin contributions,
// and the frontend ACL chain.
func compileNamespace(
	doc *Document,
	cfg config.Config,
	serviceName string,
	decl namespace.Namespace,
	discoverType string,
	advertiseTypes []string,
	available []string,
	zkTopology []string,
	topo topology.Source,
	rec Recorder,
) error {
	base, err := baseWatcherConfig(serviceName, decl, zkTopology, cfg, topo.CurrentLocation)
	if err != nil {
		return err
	}

	socket, err := socketPath(cfg, serviceName, false)
	if err != nil {
		return fmt.Errorf("resolving socket path: %w", err)
	}
	socketProxy, err := socketPath(cfg, serviceName, true)
	if err != nil {
		return fmt.Errorf("resolving proxy socket path: %w", err)
	}

	endpointOrder := endpointOrderFor(decl)

	for _, d := range backendsForService(advertiseTypes, endpointOrder) {
		backendID := GetBackendName(serviceName, discoverType, d.AdvertiseType, d.EndpointName)
		cfgCopy := cloneServiceConfig(base)

		cfgCopy.Discovery.LabelFilters = []LabelFilter{{
			Label:     fmt.Sprintf("%s:%s", d.AdvertiseType, mustLocation(topo, d.AdvertiseType)),
			Value:     "",
			Condition: "equals",
		}}

		if d.EndpointName != defaultSection {
			applyEndpointTimeout(cfgCopy.HAProxy, decl.EndpointTimeouts[d.EndpointName].TimeoutMs)
		}

		if decl.DiscoveryOnly() {
			cfgCopy.HAProxy = &HAProxyServiceConfig{Disabled: true}
			if cfg.ListenWithNginx {
				cfgCopy.Nginx = &NginxServiceConfig{Disabled: true}
			}
		} else {
			if d.AdvertiseType == discoverType && d.EndpointName == defaultSection {
				port := fmt.Sprintf("%d", *decl.ProxyPort)
				if cfg.ListenWithHAProxy && !envoyPrimary(decl) {
					cfgCopy.HAProxy.Port = &port
					cfgCopy.HAProxy.Frontend = append(cfgCopy.HAProxy.Frontend,
						fmt.Sprintf("bind %s", socket),
						fmt.Sprintf("bind %s accept-proxy", socketProxy),
					)
				} else {
					cfgCopy.HAProxy.Port = nil
					cfgCopy.HAProxy.BindAddress = socket
					cfgCopy.HAProxy.Frontend = append(cfgCopy.HAProxy.Frontend,
						fmt.Sprintf("bind %s accept-proxy", socketProxy),
					)
				}
			} else {
				// backend-only watchers have no listener, so no frontend at all.
				cfgCopy.HAProxy.Frontend = nil
			}
			cfgCopy.HAProxy.BackendName = backendID
		}

		doc.Services[backendID] = cfgCopy
		if rec != nil {
			rec.BackendEmitted()
		}
	}

	if decl.DiscoveryOnly() {
		return nil
	}

	if cfg.ListenWithNginx && !envoyPrimary(decl) {
		listener, err := generateNginxForWatcher(serviceName, decl, cfg)
		if err != nil {
			return err
		}
		doc.Services[serviceName+".nginx_listener"] = listener
	}

	svc := doc.Services[serviceName]
	if svc == nil || svc.HAProxy == nil {
		return fmt.Errorf("internal: missing default backend for %s", serviceName)
	}

	for _, nf := range plugins.Registry {
		p := nf.Factory(serviceName, decl, cfg)
		c := p.Contribute()

		svc.HAProxy.Frontend = plugins.ApplyBlock(svc.HAProxy.Frontend, c.Frontend, c.PrependFrontend)
		svc.HAProxy.Backend = plugins.ApplyBlock(svc.HAProxy.Backend, c.Backend, c.PrependBackend)
		doc.HAProxy.Global = plugins.ApplyBlock(doc.HAProxy.Global, c.Global, c.PrependGlobal)
		doc.HAProxy.Defaults = plugins.ApplyBlock(doc.HAProxy.Defaults, c.Defaults, c.PrependDefaults)
	}

	// Routing ACLs must be emitted last: their ordering relative to any
	// plugin-contributed frontend rule matters (spec §4.4 step 8).
	svc.HAProxy.Frontend = append(svc.HAProxy.Frontend, generateACLsForService(
		serviceName, discoverType, advertiseTypes, endpointOrder, available,
	)...)

	return nil
}

// envoyPrimary reports whether a namespace has opted into envoy mode of its
// migration config, which keeps the primary HAProxy backend socket-only and
// drops the secondary Nginx proxy listener entirely (Open Question
// resolution, spec §3 "envoy_migration_config").
func envoyPrimary(decl namespace.Namespace) bool {
	return decl.EnvoyMigration != nil && decl.EnvoyMigration.Enabled && decl.EnvoyMigration.Mode == "envoy"
}

func mustLocation(topo topology.Source, locationType string) string {
	loc, err := topo.CurrentLocation(locationType)
	if err != nil {
		return ""
	}
	return loc
}

// endpointOrderFor returns the namespace's declared endpoint_timeouts key
// order. Namespaces with a recorded EndpointOrder (decoded from JSON) use
// it verbatim; namespaces built in-process without one (e.g. in tests) fall
// back to lexical order so output stays deterministic (spec §4.4
// determinism invariant).
func endpointOrderFor(decl namespace.Namespace) []string {
	if len(decl.EndpointOrder) > 0 {
		return append([]string{}, decl.EndpointOrder...)
	}
	order := make([]string, 0, len(decl.EndpointTimeouts))
	for name := range decl.EndpointTimeouts {
		order = append(order, name)
	}
	sort.Strings(order)
	return order
}

// applyEndpointTimeout overrides the backend's "timeout server" directive,
// appending one if the base watcher config never set it.
func applyEndpointTimeout(haproxy *HAProxyServiceConfig, timeoutMs int) {
	directive := fmt.Sprintf("timeout server %dms", timeoutMs)
	for i, v := range haproxy.Backend {
		if hasPrefix(v, "timeout server ") {
			haproxy.Backend[i] = directive
			return
		}
	}
	haproxy.Backend = append(haproxy.Backend, directive)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// cloneServiceConfig deep-copies the slices and pointers a base watcher
// config shares across backend descriptors, so per-descriptor overrides
// (frontend binding, endpoint timeout) never alias between descriptors.
func cloneServiceConfig(base *ServiceConfig) *ServiceConfig {
	clone := *base
	if base.HAProxy != nil {
		h := *base.HAProxy
		h.Frontend = append([]string{}, base.HAProxy.Frontend...)
		h.Backend = append([]string{}, base.HAProxy.Backend...)
		h.Listen = append([]string{}, base.HAProxy.Listen...)
		clone.HAProxy = &h
	}
	if base.Nginx != nil {
		n := *base.Nginx
		clone.Nginx = &n
	}
	clone.DefaultServers = append([]map[string]string{}, base.DefaultServers...)
	return &clone
}

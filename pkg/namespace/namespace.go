// Package namespace defines the declared-service data model consumed by the
// compiler: a namespace is a logical service endpoint declaration keyed
// "service.instance", carrying discovery, timeout, topology, plugin, and
// chaos attributes. All fields have defaults; missing maps decode as empty,
// missing scalars stay unset (nil), never zero.
package namespace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// EndpointTimeout is a per-path-prefix override of the default server
// timeout, realized by the compiler as a sibling backend descriptor.
//
// This mirrors the richer of the two endpoint_timeouts shapes the original
// source exposes (name -> {endpoint, endpoint_timeout_ms}), rather than the
// flatter "path -> ms" shape some call sites use. PathPrefix is decoded but
// not read by the compiler: the per-endpoint path ACL always matches the
// map key itself, whether or not PathPrefix is set.
type EndpointTimeout struct {
	PathPrefix string `json:"endpoint,omitempty"`
	TimeoutMs  int    `json:"endpoint_timeout_ms"`
}

// EnvoyMigrationConfig marks a namespace as mid-migration to an envoy-based
// data plane. Enabled=false means Mode is ignored regardless of its
// contents, even if present in the declaration.
type EnvoyMigrationConfig struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"` // "envoy", "dual", or "synapse"
}

// Namespace is a declared service endpoint, keyed by "service.instance" at
// the call site (the key itself is not part of this struct).
type Namespace struct {
	// ProxyPort: nil means discovery-only (no listener); a negative value
	// marks the namespace disabled entirely.
	ProxyPort *int `json:"proxy_port,omitempty"`

	Mode      string   `json:"mode,omitempty"` // "http" (default) or "tcp"
	Discover  string   `json:"discover,omitempty"`
	Advertise []string `json:"advertise,omitempty"`

	HealthcheckURI          string            `json:"healthcheck_uri,omitempty"`
	ExtraHeaders            map[string]string `json:"extra_headers,omitempty"`
	ExtraHealthcheckHeaders map[string]string `json:"extra_healthcheck_headers,omitempty"`

	TimeoutConnectMs *int `json:"timeout_connect_ms,omitempty"`
	TimeoutClientMs  *int `json:"timeout_client_ms,omitempty"`
	TimeoutServerMs  *int `json:"timeout_server_ms,omitempty"`

	Retries   *int   `json:"retries,omitempty"`
	Balance   string `json:"balance,omitempty"` // "leastconn" or "roundrobin"
	Keepalive *bool  `json:"keepalive,omitempty"`
	AllRedisp *bool  `json:"allredisp,omitempty"`

	// Chaos is grouping-type -> grouping-value -> {fail|delay -> value}.
	// ChaosOrder records the declared top-level grouping-type key order, so
	// MergeChaosForGrouping can reproduce the original's dict.update()
	// last-writer-wins semantics on a conflicting key instead of Go's
	// randomized map iteration (spec §8 determinism invariant).
	Chaos      map[string]map[string]map[string]string `json:"chaos,omitempty"`
	ChaosOrder []string                                 `json:"-"`

	// EndpointTimeouts maps endpoint name to its override. EndpointOrder
	// records the declared key order, since plain Go maps (and JSON
	// objects) don't preserve it and ordering is load-bearing (spec §9).
	EndpointTimeouts map[string]EndpointTimeout `json:"endpoint_timeouts,omitempty"`
	EndpointOrder    []string                   `json:"-"`

	Plugins map[string]map[string]interface{} `json:"plugins,omitempty"`

	ProxiedThrough *string `json:"proxied_through,omitempty"`
	IsProxy        bool    `json:"is_proxy,omitempty"`

	EnvoyMigration *EnvoyMigrationConfig `json:"envoy_migration_config,omitempty"`
}

// Named pairs a namespace name ("service.instance") with its declaration,
// matching the external iterable-of-(name, declaration) contract (spec §4.4
// inputs, §6 "Service namespaces").
type Named struct {
	Name string
	Decl Namespace
}

// Enabled reports whether the namespace should be compiled at all: a
// negative ProxyPort marks it fully disabled (spec §3 invariant, §4.4 step 2).
func (n Namespace) Enabled() bool {
	return n.ProxyPort == nil || *n.ProxyPort >= 0
}

// DiscoveryOnly reports whether the namespace wants registry discovery but
// no load-balancer listener.
func (n Namespace) DiscoveryOnly() bool {
	return n.ProxyPort == nil
}

// ResolvedMode returns the configured mode, defaulting to "http".
func (n Namespace) ResolvedMode() string {
	if n.Mode == "" {
		return "http"
	}
	return n.Mode
}

// ResolvedHealthcheckURI returns the configured healthcheck URI, defaulting
// to "/status".
func (n Namespace) ResolvedHealthcheckURI() string {
	if n.HealthcheckURI == "" {
		return "/status"
	}
	return n.HealthcheckURI
}

// ResolvedDiscover returns the configured discover type, defaulting to
// "region".
func (n Namespace) ResolvedDiscover() string {
	if n.Discover == "" {
		return "region"
	}
	return n.Discover
}

// ResolvedAdvertise returns the configured advertise list, defaulting to
// ["region"] when unset.
func (n Namespace) ResolvedAdvertise() []string {
	if len(n.Advertise) == 0 {
		return []string{"region"}
	}
	return n.Advertise
}

// MergeChaosForGrouping walks the chaos dict's top-level grouping-type keys
// in declaration order (ChaosOrder), resolves each via lookupGrouping, and
// merges the sub-dictionary whose value matches the host's current value
// for that grouping type. Later grouping types in declared order win on key
// conflicts, matching the original's dict.update() semantics — Go map
// iteration order is randomized per-process, so ChaosOrder (captured by
// UnmarshalJSON) is what makes this deterministic rather than the ranged
// map itself.
func (n Namespace) MergeChaosForGrouping(lookupGrouping func(groupingType string) (string, error)) (map[string]string, error) {
	result := map[string]string{}
	for _, groupingType := range n.chaosIterationOrder() {
		myValue, err := lookupGrouping(groupingType)
		if err != nil {
			return nil, fmt.Errorf("resolving grouping %q: %w", groupingType, err)
		}
		for k, v := range n.Chaos[groupingType][myValue] {
			result[k] = v
		}
	}
	return result, nil
}

// chaosIterationOrder returns ChaosOrder when it covers every key in Chaos,
// falling back to a sorted key list otherwise (e.g. Chaos populated
// directly by a test or caller that bypassed UnmarshalJSON) so iteration is
// always deterministic even without a captured declaration order.
func (n Namespace) chaosIterationOrder() []string {
	if len(n.ChaosOrder) == len(n.Chaos) {
		return n.ChaosOrder
	}
	order := make([]string, 0, len(n.Chaos))
	for groupingType := range n.Chaos {
		order = append(order, groupingType)
	}
	sort.Strings(order)
	return order
}

// namespaceAlias lets UnmarshalJSON delegate field decoding to the standard
// decoder while it separately walks raw tokens to capture endpoint_timeouts
// key order.
type namespaceAlias Namespace

// UnmarshalJSON decodes a Namespace, additionally recording the declared
// key order of endpoint_timeouts into EndpointOrder. Namespaces usually
// arrive already decoded in-process from the namespace-source collaborator,
// but the same struct also decodes operator-supplied fixture files in
// tests, so ordering must survive a JSON round-trip.
func (n *Namespace) UnmarshalJSON(data []byte) error {
	var alias namespaceAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*n = Namespace(alias)

	var raw struct {
		EndpointTimeouts json.RawMessage `json:"endpoint_timeouts"`
		Chaos            json.RawMessage `json:"chaos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	order, err := jsonObjectKeyOrder(raw.EndpointTimeouts)
	if err != nil {
		return fmt.Errorf("decoding endpoint_timeouts: %w", err)
	}
	n.EndpointOrder = order

	chaosOrder, err := jsonObjectKeyOrder(raw.Chaos)
	if err != nil {
		return fmt.Errorf("decoding chaos: %w", err)
	}
	n.ChaosOrder = chaosOrder

	return nil
}

// jsonObjectKeyOrder returns the declared key order of a JSON object,
// walking it with a streaming decoder since plain unmarshaling into a Go
// map discards order. An empty/absent raw value yields a nil order.
func jsonObjectKeyOrder(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("non-string key")
		}
		order = append(order, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("decoding value for %q: %w", key, err)
		}
	}
	return order, nil
}

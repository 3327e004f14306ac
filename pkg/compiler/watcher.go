package compiler

import (
	"fmt"
	"sort"
	"strings"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

// sortedKeys returns a map's keys in sorted order, used wherever the
// original source iterates a dict whose insertion order this port cannot
// reconstruct, so output stays deterministic across compiles.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// defaultReapAgeS bounds how long a stale HAProxy backend socket can
// survive before the reaper recycles it. The secondary Nginx listener's
// proxy_timeout is pinned ten seconds above this so the primary proxy
// always times the connection out first (spec §4.4 step 6).
const defaultReapAgeS = 3600

// baseWatcherConfig builds the common per-namespace watcher shared by every
// backend descriptor before per-descriptor overrides (chaos, timeouts,
// frontend binding) are layered on (spec §4.4 step 2).
func baseWatcherConfig(
	serviceName string,
	decl namespace.Namespace,
	zkTopology []string,
	cfg config.Config,
	lookupGrouping func(string) (string, error),
) (*ServiceConfig, error) {
	discovery := DiscoveryConfig{
		Method: "zookeeper",
		Path:   fmt.Sprintf("/smartstack/global/%s", serviceName),
		Hosts:  zkTopology,
	}

	haproxy := generateHAProxyForWatcher(serviceName, decl, cfg)

	chaos, err := decl.MergeChaosForGrouping(lookupGrouping)
	if err != nil {
		return nil, fmt.Errorf("resolving chaos for %s: %w", serviceName, err)
	}
	if len(chaos) > 0 {
		var frontendChaos []string
		frontendChaos, discovery = chaosOptions(chaos, discovery)
		haproxy.Frontend = append(haproxy.Frontend, frontendChaos...)
	}

	svc := &ServiceConfig{
		DefaultServers:      []map[string]string{},
		UsePreviousBackends: false,
		Discovery:           discovery,
		HAProxy:             &haproxy,
	}

	if cfg.ListenWithNginx {
		svc.Nginx = &NginxServiceConfig{Disabled: true}
	}

	return svc, nil
}

func defaultTimeout(decl namespace.Namespace) *int {
	if decl.TimeoutClientMs == nil && decl.TimeoutServerMs == nil {
		return nil
	}
	max := 0
	if decl.TimeoutClientMs != nil && *decl.TimeoutClientMs > max {
		max = *decl.TimeoutClientMs
	}
	if decl.TimeoutServerMs != nil && *decl.TimeoutServerMs > max {
		max = *decl.TimeoutServerMs
	}
	return &max
}

// generateHAProxyForWatcher builds the frontend/backend directive lists
// common to every backend descriptor of one namespace (spec §4.4 step 2).
// mode/balance are not enum-validated anywhere upstream, matching the
// original's permissive if/elif chain: an unrecognized mode falls through
// to the layer4/non-http directives below, and an unrecognized balance
// value simply gets no "balance" directive at all.
func generateHAProxyForWatcher(serviceName string, decl namespace.Namespace, cfg config.Config) HAProxyServiceConfig {
	mode := decl.ResolvedMode()
	fallback := defaultTimeout(decl)

	observeLayer := "layer7"
	if mode != "http" {
		observeLayer = "layer4"
	}
	serverOptions := fmt.Sprintf(
		"check port %d observe %s maxconn %d maxqueue %d",
		cfg.HacheckPort, observeLayer, cfg.MaxconnPerServer, cfg.MaxqueuePerServer,
	)

	var frontend []string
	timeoutClient := decl.TimeoutClientMs
	if timeoutClient == nil {
		timeoutClient = fallback
	}
	if timeoutClient != nil {
		frontend = append(frontend, fmt.Sprintf("timeout client %dms", *timeoutClient))
	}

	if mode == "http" {
		frontend = append(frontend, capturedRequestHeaders(cfg.HAProxyCapturedReqHeaders)...)
		frontend = append(frontend, "option httplog")
	} else if mode == "tcp" {
		frontend = append(frontend, "no option accept-invalid-http-request", "option tcplog")
	}

	var backend []string
	if decl.Balance == "leastconn" || decl.Balance == "roundrobin" {
		backend = append(backend, fmt.Sprintf("balance %s", decl.Balance))
	}

	if decl.Keepalive != nil && *decl.Keepalive && mode == "http" {
		backend = append(backend, "no option forceclose", "option http-keep-alive")
	}

	if mode == "tcp" {
		frontend = append(frontend, "mode tcp")
		backend = append(backend, "mode tcp")
	}

	extraHeaderNames := sortedKeys(decl.ExtraHeaders)
	for _, header := range extraHeaderNames {
		backend = append(backend, fmt.Sprintf("reqidel ^%s:.*", header))
	}
	for _, header := range extraHeaderNames {
		backend = append(backend, fmt.Sprintf(`reqadd %s:\ %s`, header, decl.ExtraHeaders[header]))
	}

	// hacheck reports the real port via X-Haproxy-Server-State; the port in
	// this URI is always 0.
	var headers strings.Builder
	if len(decl.ExtraHealthcheckHeaders) > 0 {
		headers.WriteString("HTTP/1.1")
		for _, k := range sortedKeys(decl.ExtraHealthcheckHeaders) {
			fmt.Fprintf(&headers, `\r\n%s:\ %s`, k, decl.ExtraHealthcheckHeaders[k])
		}
	}
	healthcheckURI := strings.TrimPrefix(decl.ResolvedHealthcheckURI(), "/")
	healthcheck := strings.TrimSpace(fmt.Sprintf(
		`option httpchk GET /%s/%s/0/%s %s`, mode, serviceName, healthcheckURI, headers.String(),
	))
	backend = append(backend, healthcheck, "http-check send-state")

	if decl.Retries != nil {
		backend = append(backend, fmt.Sprintf("retries %d", *decl.Retries))
	}

	if cfg.HAProxyRespectAllRedisp && decl.AllRedisp != nil && *decl.AllRedisp {
		backend = append(backend, "option allredisp")
	}

	if decl.TimeoutConnectMs != nil {
		backend = append(backend, fmt.Sprintf("timeout connect %dms", *decl.TimeoutConnectMs))
	}

	timeoutServer := decl.TimeoutServerMs
	if timeoutServer == nil {
		timeoutServer = fallback
	}
	if timeoutServer != nil {
		backend = append(backend, fmt.Sprintf("timeout server %dms", *timeoutServer))
	}

	return HAProxyServiceConfig{
		ServerOptions: serverOptions,
		Frontend:      frontend,
		Backend:       backend,
		Listen:        []string{},
	}
}

// generateNginxForWatcher builds the secondary service watcher that listens
// on proxy_port and proxies the connection to HAProxy's unix socket (spec
// §4.4 step 6).
func generateNginxForWatcher(serviceName string, decl namespace.Namespace, cfg config.Config) (*ServiceConfig, error) {
	sock, err := socketPath(cfg, serviceName, cfg.NginxProxyProto)
	if err != nil {
		return nil, fmt.Errorf("resolving nginx socket path for %s: %w", serviceName, err)
	}

	timeout := defaultReapAgeS + 10
	server := []string{fmt.Sprintf("proxy_timeout %ds", timeout)}
	if cfg.NginxProxyProto {
		server = append(server, "proxy_protocol on")
	}

	nginx := &NginxServiceConfig{
		Mode:   "tcp",
		Port:   *decl.ProxyPort,
		Server: server,
	}
	if cfg.ListenWithHAProxy && cfg.ListenWithNginx {
		nginx.ListenOptions = "reuseport"
	}

	return &ServiceConfig{
		DefaultServers:      []map[string]string{{"host": "unix", "port": sock}},
		UsePreviousBackends: true,
		Discovery:           DiscoveryConfig{Method: "base"},
		HAProxy:             &HAProxyServiceConfig{Disabled: true},
		FileOutput:          &FileOutputToggle{Disabled: true},
		Nginx:               nginx,
	}, nil
}

package compiler

import (
	"crypto/md5"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"synapse-tools-go/pkg/core/config"
)

// serverOrderSeed derives a stable per-host seed from the hostname, matching
// the original's hashlib.md5(hostname).hexdigest() interpreted as a base-16
// integer. Two daemons on the same host must agree on this value so that
// HAProxy's server-order-dependent load balancing behaves consistently
// across a synapse restart.
func serverOrderSeed() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolving hostname: %w", err)
	}
	sum := md5.Sum([]byte(hostname))
	seed := new(big.Int).SetBytes(sum[:])
	return seed.String(), nil
}

// capturedRequestHeaders expands the comma-separated "name[:len]" list into
// HAProxy capture directives, defaulting length to 64 bytes.
func capturedRequestHeaders(raw string) []string {
	var out []string
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, length, found := strings.Cut(pair, ":")
		if !found || length == "" {
			length = "64"
		}
		out = append(out, fmt.Sprintf("capture request header %s len %s", name, length))
	}
	return out
}

// generateHAProxyTopLevel builds the HAProxy global block (spec §4.4 step 1).
func generateHAProxyTopLevel(cfg config.Config) (GlobalBlock, error) {
	seed, err := serverOrderSeed()
	if err != nil {
		return GlobalBlock{}, err
	}

	reloadCmd, err := config.FormatCmd(cfg.HAProxyReloadCmdFmt, cfg.TemplateFields())
	if err != nil {
		return GlobalBlock{}, fmt.Errorf("formatting haproxy_reload_cmd_fmt: %w", err)
	}

	mapFile := filepath.Join(cfg.MapDir, "ip_to_service.map")

	top := GlobalBlock{
		BindAddress:     cfg.BindAddr,
		RestartInterval: cfg.HAProxyRestartIntervalS,
		RestartJitter:   0.1,
		StateFilePath:   "/var/run/synapse/state.json",
		StateFileTTL:    30 * 60,
		ReloadCommand:   reloadCmd,
		SocketFilePath:  cfg.HAProxySocketFilePath,
		ConfigFilePath:  cfg.HAProxyConfigPath,
		DoWrites:        true,
		DoReloads:       true,
		DoSocket:        true,
		ServerOrderSeed: seed,

		Global: []string{
			"daemon",
			fmt.Sprintf("maxconn %d", cfg.MaximumConnections),
			fmt.Sprintf("stats socket %s level admin", cfg.HAProxySocketFilePath),
			"tune.bufsize 32768",
			"spread-checks 50",
			"log 127.0.0.1:1514 daemon info",
			"log-send-hostname",
			"unix-bind mode 666",
			fmt.Sprintf("setenv map_file %s", mapFile),
			fmt.Sprintf("setenv map_refresh_interval %d", cfg.MapRefreshInterval),
		},

		Defaults: []string{
			"timeout connect 200ms",
			"timeout client 1000ms",
			"timeout server 1000ms",
			"retries 1",
			"option redispatch 1",
			"balance leastconn",
			"mode http",
			"option forceclose",
			"option accept-invalid-http-request",
			"log global",
			"option log-separate-errors",
			fmt.Sprintf(
				"default-server on-error fastinter error-limit 1 inter %s downinter 30s fastinter 30s rise 1 fall 2",
				cfg.HAProxyDefaultsInter,
			),
		},

		ExtraSections: map[string][]string{
			"listen stats": {
				fmt.Sprintf("bind :%d", cfg.StatsPort),
				"mode http",
				"stats enable",
				"stats uri /",
				"stats refresh 1m",
				"stats show-node",
			},
		},
	}

	if cfg.EnableMapDebug {
		top.ExtraSections["listen map.debug"] = []string{
			fmt.Sprintf("bind :%d", cfg.MapDebugPort),
			"http-request use-service lua.map-debug",
		}
	}

	if cfg.HAProxyStateFilePath != "" {
		top.Global = append(top.Global, fmt.Sprintf("server-state-file %s", cfg.HAProxyStateFilePath))
		top.Defaults = append(top.Defaults, "load-server-state-from-file global")
	}

	for _, errName := range sortedKeys(cfg.Errorfiles) {
		top.Defaults = append(top.Defaults, fmt.Sprintf("errorfile %s %s", errName, cfg.Errorfiles[errName]))
	}

	return top, nil
}

// generateNginxTopLevel builds the Nginx top-level section, only called
// when listen_with_nginx is set.
func generateNginxTopLevel(cfg config.Config) (*NginxTopLevel, error) {
	checkCmd, err := config.FormatCmd(cfg.NginxCheckCmdFmt, cfg.TemplateFields())
	if err != nil {
		return nil, fmt.Errorf("formatting nginx_check_cmd_fmt: %w", err)
	}
	reloadCmd, err := config.FormatCmd(cfg.NginxReloadCmdFmt, cfg.TemplateFields())
	if err != nil {
		return nil, fmt.Errorf("formatting nginx_reload_cmd_fmt: %w", err)
	}
	startCmd, err := config.FormatCmd(cfg.NginxStartCmdFmt, cfg.TemplateFields())
	if err != nil {
		return nil, fmt.Errorf("formatting nginx_start_cmd_fmt: %w", err)
	}

	return &NginxTopLevel{
		Contexts: map[string][]string{
			"main": {
				"worker_processes 1",
				fmt.Sprintf("worker_rlimit_nofile %d", cfg.MaximumConnections*4),
				fmt.Sprintf("pid %s", cfg.NginxPidFilePath),
				fmt.Sprintf("error_log %s %s", cfg.NginxLogErrorTarget, cfg.NginxLogErrorLevel),
			},
			"stream": {"tcp_nodelay on"},
			"events": {
				fmt.Sprintf("worker_connections %d", cfg.MaximumConnections),
				"multi_accept on",
				"use epoll",
			},
		},
		ConfigFilePath:  cfg.NginxConfigPath,
		CheckCommand:    checkCmd,
		ReloadCommand:   reloadCmd,
		StartCommand:    startCmd,
		DoWrites:        true,
		DoReloads:       true,
		RestartInterval: cfg.NginxRestartIntervalS,
		RestartJitter:   0.1,
		ListenAddress:   cfg.BindAddr,
	}, nil
}

// generateBaseDocument builds the skeleton document common to every
// compile (spec §4.4 step 1), before any service watchers are added.
func generateBaseDocument(cfg config.Config) (*Document, error) {
	haproxy, err := generateHAProxyTopLevel(cfg)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Services:   map[string]*ServiceConfig{},
		FileOutput: FileOutput{OutputDirectory: cfg.FileOutputPath},
		HAProxy:    haproxy,
	}

	if cfg.ListenWithNginx {
		nginx, err := generateNginxTopLevel(cfg)
		if err != nil {
			return nil, err
		}
		doc.Nginx = nginx
	}

	return doc, nil
}

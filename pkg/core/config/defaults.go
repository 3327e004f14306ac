package config

// Default values for configuration fields, mirroring the original
// synapse-tools set_defaults table verbatim (spec §4.1).
const (
	DefaultBindAddr = "0.0.0.0"

	DefaultListenWithHAProxy = true
	DefaultListenWithNginx   = false

	DefaultMaximumConnections = 10000
	DefaultMaxconnPerServer   = 50
	DefaultMaxqueuePerServer  = 10
	DefaultFileOutputPath     = "/var/run/synapse/services"

	DefaultHacheckPort = 6666
	DefaultStatsPort   = 3212

	DefaultHAProxyDefaultsInter     = "10m"
	DefaultHAProxyRespectAllRedisp  = true
	DefaultHAProxyCapturedReqHeaders = "X-B3-SpanId,X-B3-TraceId,X-B3-ParentSpanId,X-B3-Flags:10,X-B3-Sampled:10"
	DefaultHAProxyRestartIntervalS  = 60
	DefaultHAProxyConfigPath        = "/var/run/synapse/haproxy.cfg"
	DefaultHAProxyPath              = "/usr/bin/haproxy-synapse"
	DefaultHAProxyPidFilePath       = "/var/run/synapse/haproxy.pid"
	DefaultHAProxySocketFilePath    = "/var/run/synapse/haproxy.sock"
	DefaultHAProxyServiceSocketsFmt = "/var/run/synapse/sockets/{service_name}.sock"
	DefaultHAProxyServiceProxySockFmt = "/var/run/synapse/sockets/{service_name}.prxy"
	// DefaultHAProxyReloadCmdFmt starts a new haproxy process on the
	// written config and hands over from the old one with -sf (a soft
	// reload keyed on the pid file).
	DefaultHAProxyReloadCmdFmt = `touch {haproxy_pid_file_path} && PID=$(cat {haproxy_pid_file_path}) && {haproxy_path} -f {haproxy_config_path} -p {haproxy_pid_file_path} -sf $PID`

	DefaultNginxRestartIntervalS = 600
	DefaultNginxProxyProto       = false
	DefaultNginxPath             = "/usr/sbin/nginx"
	DefaultNginxPrefix           = "/var/run/synapse/nginx_temp"
	DefaultNginxConfigPath       = "/var/run/synapse/nginx.cfg"
	DefaultNginxPidFilePath      = "/var/run/synapse/nginx.pid"
	DefaultNginxLogErrorTarget   = "/dev/null"
	DefaultNginxLogErrorLevel    = "crit"
	DefaultNginxCheckCmdFmt      = "{nginx_path} -t -c {nginx_config_path}"
	DefaultNginxStartCmdFmt      = "mkdir -p {nginx_prefix} && (kill -0 $(cat {nginx_pid_file_path}) || {nginx_path} -c {nginx_config_path} -p {nginx_prefix})"
	// DefaultNginxReloadScript performs nginx's binary-upgrade dance
	// (USR2/WINCH/QUIT) so reloads are hitless; DefaultNginxReloadCmdFmt
	// invokes it against the pid file.
	DefaultNginxReloadScript = `/bin/bash -c 'set -ue -o pipefail; q() { pidfile=$1; oldpid=$(cat $pidfile); kill -USR2 $oldpid; sleep 2; newpid=$(cat $pidfile); if [ $oldpid -eq $newpid ]; then return 1; fi; kill -WINCH $(cat $pidfile.oldbin); kill -QUIT $(cat $pidfile.oldbin); }; q $0'`
	DefaultNginxReloadCmdFmt = "{nginx_reload_script} {nginx_pid_file_path}"

	DefaultMapDir             = "/var/run/synapse/maps/"
	DefaultMapRefreshInterval = 5

	DefaultZookeeperTopologyPath = "/nail/etc/zookeeper_discovery/infrastructure/local.yaml"

	DefaultConfigFile = "/var/run/synapse/synapse.conf.json"
)

// DefaultSynapseCommand is the init-system command used for stop/start
// reloads when synapse_restart_command is not set.
func DefaultSynapseCommand() []string {
	return []string{"service", "synapse"}
}

// SetDefaults applies default values to unset configuration fields,
// in-place, matching the original's setdefault-over-a-list-of-pairs
// approach (spec §4.1: "Defaults take effect only when the key is
// absent; explicit nulls are respected" — callers should only invoke this
// after confirming a field was genuinely absent from the parsed JSON, which
// Load does via a presence-tracking pre-pass).
func SetDefaults(cfg *Config, present map[string]bool) {
	set := func(key string, apply func()) {
		if !present[key] {
			apply()
		}
	}

	// Backward compatibility: reload_cmd_fmt -> haproxy_reload_cmd_fmt.
	if present["reload_cmd_fmt"] && cfg.ReloadCmdFmt != "" {
		cfg.HAProxyReloadCmdFmt = cfg.ReloadCmdFmt
		present["haproxy_reload_cmd_fmt"] = true
	}

	set("bind_addr", func() { cfg.BindAddr = DefaultBindAddr })
	set("listen_with_haproxy", func() { cfg.ListenWithHAProxy = DefaultListenWithHAProxy })
	set("haproxy.defaults.inter", func() { cfg.HAProxyDefaultsInter = DefaultHAProxyDefaultsInter })
	set("haproxy_socket_file_path", func() { cfg.HAProxySocketFilePath = DefaultHAProxySocketFilePath })
	set("haproxy_captured_req_headers", func() { cfg.HAProxyCapturedReqHeaders = DefaultHAProxyCapturedReqHeaders })
	set("haproxy_config_path", func() { cfg.HAProxyConfigPath = DefaultHAProxyConfigPath })
	set("haproxy_path", func() { cfg.HAProxyPath = DefaultHAProxyPath })
	set("haproxy_pid_file_path", func() { cfg.HAProxyPidFilePath = DefaultHAProxyPidFilePath })
	set("haproxy_respect_allredisp", func() { cfg.HAProxyRespectAllRedisp = DefaultHAProxyRespectAllRedisp })
	set("haproxy_reload_cmd_fmt", func() { cfg.HAProxyReloadCmdFmt = DefaultHAProxyReloadCmdFmt })
	set("haproxy_service_sockets_path_fmt", func() { cfg.HAProxyServiceSocketsFmt = DefaultHAProxyServiceSocketsFmt })
	set("haproxy_service_proxy_sockets_path_fmt", func() { cfg.HAProxyServiceProxySockFmt = DefaultHAProxyServiceProxySockFmt })
	set("haproxy_restart_interval_s", func() { cfg.HAProxyRestartIntervalS = DefaultHAProxyRestartIntervalS })

	set("maximum_connections", func() { cfg.MaximumConnections = DefaultMaximumConnections })
	set("maxconn_per_server", func() { cfg.MaxconnPerServer = DefaultMaxconnPerServer })
	set("maxqueue_per_server", func() { cfg.MaxqueuePerServer = DefaultMaxqueuePerServer })
	set("file_output_path", func() { cfg.FileOutputPath = DefaultFileOutputPath })
	set("synapse_command", func() { cfg.SynapseCommand = DefaultSynapseCommand() })
	set("zookeeper_topology_path", func() { cfg.ZookeeperTopologyPath = DefaultZookeeperTopologyPath })
	set("hacheck_port", func() { cfg.HacheckPort = DefaultHacheckPort })
	set("stats_port", func() { cfg.StatsPort = DefaultStatsPort })
	set("map_dir", func() { cfg.MapDir = DefaultMapDir })
	set("map_refresh_interval", func() { cfg.MapRefreshInterval = DefaultMapRefreshInterval })

	set("listen_with_nginx", func() { cfg.ListenWithNginx = DefaultListenWithNginx })
	set("nginx_path", func() { cfg.NginxPath = DefaultNginxPath })
	set("nginx_prefix", func() { cfg.NginxPrefix = DefaultNginxPrefix })
	set("nginx_config_path", func() { cfg.NginxConfigPath = DefaultNginxConfigPath })
	set("nginx_pid_file_path", func() { cfg.NginxPidFilePath = DefaultNginxPidFilePath })
	set("nginx_proxy_proto", func() { cfg.NginxProxyProto = DefaultNginxProxyProto })
	set("nginx_reload_script", func() { cfg.NginxReloadScript = DefaultNginxReloadScript })
	set("nginx_reload_cmd_fmt", func() { cfg.NginxReloadCmdFmt = DefaultNginxReloadCmdFmt })
	set("nginx_start_cmd_fmt", func() { cfg.NginxStartCmdFmt = DefaultNginxStartCmdFmt })
	set("nginx_check_cmd_fmt", func() { cfg.NginxCheckCmdFmt = DefaultNginxCheckCmdFmt })
	set("nginx_restart_interval_s", func() { cfg.NginxRestartIntervalS = DefaultNginxRestartIntervalS })
	set("nginx_log_error_target", func() { cfg.NginxLogErrorTarget = DefaultNginxLogErrorTarget })
	set("nginx_log_error_level", func() { cfg.NginxLogErrorLevel = DefaultNginxLogErrorLevel })

	set("config_file", func() { cfg.ConfigFile = DefaultConfigFile })
}

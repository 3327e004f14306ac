// Package config loads and validates the operator-supplied top-level
// configuration (spec §4.1): a structured, JSON-shaped file merged with a
// fixed default table.
package config

// Config is the root operator configuration, read from the path named by
// SYNAPSE_TOOLS_CONFIG_PATH (or a fixed default) and merged with defaults.
//
// Field names mirror the original synapse-tools keys verbatim (spec §4.1)
// so operator config files need no translation.
type Config struct {
	BindAddr string `json:"bind_addr"`

	ListenWithHAProxy bool `json:"listen_with_haproxy"`
	ListenWithNginx   bool `json:"listen_with_nginx"`

	MaximumConnections int    `json:"maximum_connections"`
	MaxconnPerServer   int    `json:"maxconn_per_server"`
	MaxqueuePerServer  int    `json:"maxqueue_per_server"`
	FileOutputPath     string `json:"file_output_path"`

	HacheckPort int `json:"hacheck_port"`
	StatsPort   int `json:"stats_port"`

	HAProxyDefaultsInter       string `json:"haproxy.defaults.inter"`
	HAProxyRespectAllRedisp    bool   `json:"haproxy_respect_allredisp"`
	HAProxyCapturedReqHeaders  string `json:"haproxy_captured_req_headers"`
	HAProxyRestartIntervalS    int    `json:"haproxy_restart_interval_s"`
	HAProxyReloadCmdFmt        string `json:"haproxy_reload_cmd_fmt"`
	HAProxyConfigPath          string `json:"haproxy_config_path"`
	HAProxyPath                string `json:"haproxy_path"`
	HAProxyPidFilePath         string `json:"haproxy_pid_file_path"`
	HAProxyStateFilePath       string `json:"haproxy_state_file_path"`
	HAProxySocketFilePath      string `json:"haproxy_socket_file_path"`
	HAProxyServiceSocketsFmt   string `json:"haproxy_service_sockets_path_fmt"`
	HAProxyServiceProxySockFmt string `json:"haproxy_service_proxy_sockets_path_fmt"`

	NginxRestartIntervalS int    `json:"nginx_restart_interval_s"`
	NginxProxyProto       bool   `json:"nginx_proxy_proto"`
	NginxPath             string `json:"nginx_path"`
	NginxPrefix           string `json:"nginx_prefix"`
	NginxConfigPath       string `json:"nginx_config_path"`
	NginxPidFilePath      string `json:"nginx_pid_file_path"`
	NginxReloadScript     string `json:"nginx_reload_script"`
	NginxReloadCmdFmt     string `json:"nginx_reload_cmd_fmt"`
	NginxStartCmdFmt      string `json:"nginx_start_cmd_fmt"`
	NginxCheckCmdFmt      string `json:"nginx_check_cmd_fmt"`
	NginxLogErrorTarget   string `json:"nginx_log_error_target"`
	NginxLogErrorLevel    string `json:"nginx_log_error_level"`

	EnableMapDebug      bool   `json:"enable_map_debug"`
	MapDebugPort        int    `json:"map_debug_port"`
	MapDir              string `json:"map_dir"`
	MapRefreshInterval  int    `json:"map_refresh_interval"`
	LuaDir              string `json:"lua_dir"`

	Errorfiles map[string]string `json:"errorfiles"`

	ZookeeperTopologyPath string `json:"zookeeper_topology_path"`

	ConfigFile string `json:"config_file"`

	SynapseCommand         []string `json:"synapse_command"`
	SynapseRestartCommand  []string `json:"synapse_restart_command,omitempty"`

	Logging LoggingDefault `json:"logging"`

	PathBasedRouting PluginToggle `json:"path_based_routing"`

	// legacy alias for haproxy_reload_cmd_fmt, preserved for backward
	// compatibility (spec §4.1).
	ReloadCmdFmt string `json:"reload_cmd_fmt,omitempty"`
}

// LoggingDefault is the operator-wide default for the logging plugin,
// overridable per-namespace (spec §4.3 "logging").
type LoggingDefault struct {
	Enabled    bool `json:"enabled"`
	SampleRate *int `json:"sample_rate,omitempty"`
}

// PluginToggle is a bare enabled/disabled operator-wide default for a
// plugin, overridable per-namespace.
type PluginToggle struct {
	Enabled bool `json:"enabled"`
}

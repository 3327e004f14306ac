package config

import "fmt"

// Validate performs structural validation on an already-defaulted
// configuration (spec §7: "Invalid operator config ... fatal; abort
// without touching the on-disk config").
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.HacheckPort < 1 || cfg.HacheckPort > 65535 {
		return fmt.Errorf("hacheck_port must be between 1 and 65535, got %d", cfg.HacheckPort)
	}
	if cfg.StatsPort < 1 || cfg.StatsPort > 65535 {
		return fmt.Errorf("stats_port must be between 1 and 65535, got %d", cfg.StatsPort)
	}
	if cfg.EnableMapDebug && (cfg.MapDebugPort < 1 || cfg.MapDebugPort > 65535) {
		return fmt.Errorf("map_debug_port must be between 1 and 65535 when enable_map_debug is set, got %d", cfg.MapDebugPort)
	}

	if cfg.MaximumConnections <= 0 {
		return fmt.Errorf("maximum_connections must be positive, got %d", cfg.MaximumConnections)
	}
	if cfg.MaxconnPerServer <= 0 {
		return fmt.Errorf("maxconn_per_server must be positive, got %d", cfg.MaxconnPerServer)
	}
	if cfg.MaxqueuePerServer < 0 {
		return fmt.Errorf("maxqueue_per_server must be non-negative, got %d", cfg.MaxqueuePerServer)
	}

	if len(cfg.SynapseCommand) == 0 && len(cfg.SynapseRestartCommand) == 0 {
		return fmt.Errorf("synapse_command must be non-empty when synapse_restart_command is not set")
	}

	if cfg.HAProxyConfigPath == "" {
		return fmt.Errorf("haproxy_config_path cannot be empty")
	}
	if cfg.HAProxySocketFilePath == "" {
		return fmt.Errorf("haproxy_socket_file_path cannot be empty")
	}
	if cfg.MapDir == "" {
		return fmt.Errorf("map_dir cannot be empty")
	}
	if cfg.MapRefreshInterval <= 0 {
		return fmt.Errorf("map_refresh_interval must be positive, got %d", cfg.MapRefreshInterval)
	}

	if _, err := FormatCmd(cfg.HAProxyReloadCmdFmt, cfg.TemplateFields()); err != nil {
		return fmt.Errorf("haproxy_reload_cmd_fmt: %w", err)
	}
	if cfg.ListenWithNginx {
		if _, err := FormatCmd(cfg.NginxReloadCmdFmt, cfg.TemplateFields()); err != nil {
			return fmt.Errorf("nginx_reload_cmd_fmt: %w", err)
		}
		if _, err := FormatCmd(cfg.NginxStartCmdFmt, cfg.TemplateFields()); err != nil {
			return fmt.Errorf("nginx_start_cmd_fmt: %w", err)
		}
		if _, err := FormatCmd(cfg.NginxCheckCmdFmt, cfg.TemplateFields()); err != nil {
			return fmt.Errorf("nginx_check_cmd_fmt: %w", err)
		}
	}

	return nil
}

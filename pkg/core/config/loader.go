package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Load reads the operator configuration file at path, applies defaults to
// absent fields, and validates the result (spec §4.1, §6).
//
// The file is JSON-shaped, matching the original source's json.load — not
// YAML, unlike the discovery-registry topology file (see
// LoadZookeeperTopology).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	present, err := presentKeys(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	SetDefaults(&cfg, present)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return &cfg, nil
}

// presentKeys returns the set of top-level keys that were actually present
// in the raw JSON document, so SetDefaults can distinguish "absent" from
// "present but zero-valued" (spec §4.1: "Defaults take effect only when the
// key is absent; explicit nulls are respected").
func presentKeys(data []byte) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(raw))
	for k := range raw {
		present[k] = true
	}
	return present, nil
}

var cmdFmtPlaceholder = regexp.MustCompile(`\{([a-zA-Z0-9_.]+)\}`)

// FormatCmd substitutes "{field_name}" placeholders in a *_cmd_fmt template
// against the resolved configuration, mirroring the original's
// str.format(**synapse_tools_config) call sites (spec §4.1).
//
// Only a fixed set of substitution keys is supported (the ones the
// original's templates actually reference); an unresolvable placeholder is
// a fatal "invalid operator config" per spec §7.
func FormatCmd(tmpl string, fields map[string]string) (string, error) {
	var firstErr error
	result := cmdFmtPlaceholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		val, ok := fields[key]
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("missing template parameter %q", key)
			}
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// TemplateFields builds the substitution map FormatCmd needs for the
// haproxy_*/nginx_* cmd_fmt templates, using the resolved configuration.
func (c Config) TemplateFields() map[string]string {
	return map[string]string{
		"haproxy_pid_file_path": c.HAProxyPidFilePath,
		"haproxy_path":          c.HAProxyPath,
		"haproxy_config_path":   c.HAProxyConfigPath,
		"nginx_path":            c.NginxPath,
		"nginx_config_path":     c.NginxConfigPath,
		"nginx_pid_file_path":   c.NginxPidFilePath,
		"nginx_prefix":          c.NginxPrefix,
		"nginx_reload_script":   c.NginxReloadScript,
	}
}

// Package compiler turns declared service namespaces into the structured
// configuration document consumed by the data-plane writer (spec §4.4).
package compiler

// Document is the root compiled configuration: one HAProxy global block, an
// optional Nginx top level, and a flat map of per-backend service configs
// keyed by backend identifier (spec §3 "Document", mirroring the original's
// BaseConfig TypedDict).
type Document struct {
	Services   map[string]*ServiceConfig `json:"services"`
	FileOutput FileOutput                `json:"file_output"`
	HAProxy    GlobalBlock               `json:"haproxy"`
	Nginx      *NginxTopLevel            `json:"nginx,omitempty"`
}

// FileOutput controls the file-based discovery fallback directory.
type FileOutput struct {
	OutputDirectory string `json:"output_directory"`
}

// GlobalBlock is the HAProxy top-level section: process-wide directives plus
// the global/defaults directive lists every service config folds into.
type GlobalBlock struct {
	BindAddress     string `json:"bind_address"`
	RestartInterval int    `json:"restart_interval"`
	RestartJitter   float64 `json:"restart_jitter"`
	StateFilePath   string `json:"state_file_path"`
	StateFileTTL    int    `json:"state_file_ttl"`
	ReloadCommand   string `json:"reload_command"`
	SocketFilePath  string `json:"socket_file_path"`
	ConfigFilePath  string `json:"config_file_path"`
	DoWrites        bool   `json:"do_writes"`
	DoReloads       bool   `json:"do_reloads"`
	DoSocket        bool   `json:"do_socket"`
	// ServerOrderSeed is a big decimal (the host's md5 digest read as an
	// integer, matching the original's hashlib.md5(hostname).hexdigest()
	// interpreted as base-16) too large for a machine word, so it is kept
	// as its decimal string form.
	ServerOrderSeed string `json:"server_order_seed"`

	Global       []string            `json:"global"`
	Defaults     []string            `json:"defaults"`
	ExtraSections map[string][]string `json:"extra_sections,omitempty"`
}

// NginxTopLevel is the Nginx top-level section, only present when the
// operator config enables listen_with_nginx.
type NginxTopLevel struct {
	Contexts        map[string][]string `json:"contexts"`
	ConfigFilePath  string              `json:"config_file_path"`
	CheckCommand    string              `json:"check_command"`
	ReloadCommand   string              `json:"reload_command"`
	StartCommand    string              `json:"start_command"`
	DoWrites        bool                `json:"do_writes"`
	DoReloads       bool                `json:"do_reloads"`
	RestartInterval int                 `json:"restart_interval"`
	RestartJitter   float64             `json:"restart_jitter"`
	ListenAddress   string              `json:"listen_address"`
}

// ServiceConfig is one backend descriptor's watcher configuration.
type ServiceConfig struct {
	HAProxy             *HAProxyServiceConfig `json:"haproxy,omitempty"`
	Nginx               *NginxServiceConfig   `json:"nginx,omitempty"`
	Discovery           DiscoveryConfig       `json:"discovery"`
	DefaultServers      []map[string]string   `json:"default_servers,omitempty"`
	UsePreviousBackends bool                  `json:"use_previous_backends"`
	FileOutput          *FileOutputToggle     `json:"file_output,omitempty"`
}

// FileOutputToggle disables file-based output for a single service config.
type FileOutputToggle struct {
	Disabled bool `json:"disabled"`
}

// HAProxyServiceConfig is one backend descriptor's HAProxy-specific
// section. Port is a pointer so that a listener bound only to the unix
// socket (BindAddress set) carries no port at all: nil is omitted from the
// JSON.
type HAProxyServiceConfig struct {
	Disabled      bool     `json:"disabled,omitempty"`
	Port          *string  `json:"port,omitempty"`
	Frontend      []string `json:"frontend,omitempty"`
	Backend       []string `json:"backend,omitempty"`
	BindAddress   string   `json:"bind_address,omitempty"`
	BackendName   string   `json:"backend_name,omitempty"`
	ServerOptions string   `json:"server_options,omitempty"`
	Listen        []string `json:"listen,omitempty"`
}

// NginxServiceConfig is one backend descriptor's Nginx-specific section,
// used only for the per-service secondary TCP listener.
type NginxServiceConfig struct {
	Disabled      bool     `json:"disabled,omitempty"`
	ListenOptions string   `json:"listen_options,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	Port          int      `json:"port,omitempty"`
	Server        []string `json:"server,omitempty"`
}

// DiscoveryConfig selects how a watcher finds its backend servers.
type DiscoveryConfig struct {
	Method       string       `json:"method"`
	Path         string       `json:"path,omitempty"`
	Hosts        []string     `json:"hosts,omitempty"`
	LabelFilters []LabelFilter `json:"label_filters,omitempty"`
}

// LabelFilter scopes zookeeper discovery to servers carrying a matching
// topology label (spec §4.4 step 4).
type LabelFilter struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Condition string `json:"condition"`
}

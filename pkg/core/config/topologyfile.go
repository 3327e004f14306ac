package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// zookeeperHostPort is a single [host, port] entry as they appear in the
// discovery-registry topology file.
type zookeeperHostPort struct {
	Host string
	Port int
}

func (z *zookeeperHostPort) UnmarshalYAML(value *yaml.Node) error {
	var pair []yaml.Node
	if err := value.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [host, port] pair, got %d elements", len(pair))
	}
	if err := pair[0].Decode(&z.Host); err != nil {
		return err
	}
	return pair[1].Decode(&z.Port)
}

// LoadZookeeperTopology reads the discovery-registry topology file (spec
// §6: "structured, list of [host, port] pairs") and returns "host:port"
// strings in file order. The original source parses this file with
// yaml.CLoader, so this loader is YAML-shaped, unlike the JSON-shaped
// operator config (spec §4.1 data model note).
func LoadZookeeperTopology(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zookeeper topology %s: %w", path, err)
	}

	var entries []zookeeperHostPort
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing zookeeper topology %s: %w", path, err)
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s:%d", e.Host, e.Port))
	}
	return out, nil
}

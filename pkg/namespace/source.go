package namespace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadFromSOADir enumerates every declared namespace under soaDir,
// mirroring the original's get_all_namespaces collaborator: one
// subdirectory per service, each containing a smartstack.yaml mapping
// instance name to its namespace declaration (spec §6 "SOA_DIR").
//
// smartstack.yaml is YAML, but Namespace only implements UnmarshalJSON (it
// needs exact control over endpoint_timeouts key ordering); each instance
// declaration is decoded generically via yaml.v3, re-marshaled to JSON,
// then handed to Namespace's own decoder so both formats share one
// semantic path.
func LoadFromSOADir(soaDir string) ([]Named, error) {
	services, err := os.ReadDir(soaDir)
	if err != nil {
		return nil, fmt.Errorf("reading SOA directory %s: %w", soaDir, err)
	}

	var names []string
	for _, svc := range services {
		if svc.IsDir() {
			names = append(names, svc.Name())
		}
	}
	sort.Strings(names)

	var result []Named
	for _, service := range names {
		path := filepath.Join(soaDir, service, "smartstack.yaml")
		instances, err := loadServiceFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		instanceNames := make([]string, 0, len(instances))
		for instance := range instances {
			instanceNames = append(instanceNames, instance)
		}
		sort.Strings(instanceNames)

		for _, instance := range instanceNames {
			result = append(result, Named{
				Name: fmt.Sprintf("%s.%s", service, instance),
				Decl: instances[instance],
			})
		}
	}

	return result, nil
}

func loadServiceFile(path string) (map[string]Namespace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	instances := make(map[string]Namespace, len(generic))
	for instance, decl := range generic {
		asJSON, err := json.Marshal(decl)
		if err != nil {
			return nil, fmt.Errorf("re-encoding %s instance %q: %w", path, instance, err)
		}
		var ns Namespace
		if err := json.Unmarshal(asJSON, &ns); err != nil {
			return nil, fmt.Errorf("decoding %s instance %q: %w", path, instance, err)
		}
		instances[instance] = ns
	}

	return instances, nil
}

package inventory

import "context"

// ContainerInspector is the minimal container-runtime client this adapter
// needs: one call enumerating every currently-running container's bridge
// IP and labels. DockerInspector in this package implements it against
// the Docker engine API; other container runtimes can be plugged in the
// same way.
type ContainerInspector interface {
	ListContainers(ctx context.Context) ([]ContainerInfo, error)
}

// ContainerInfo is the subset of container metadata the adapter reads:
// its bridge-network IP address and its labels.
type ContainerInfo struct {
	BridgeIP string
	Labels   map[string]string
}

// ContainerRuntimeSource extracts (ip, identity) pairs from running
// containers, preferring a MESOS_TASK_ID label and falling back to a
// paasta_service/paasta_instance label pair (spec §4 "Inventory
// adapters", mirroring the original's Docker-based extraction).
type ContainerRuntimeSource struct {
	Inspector ContainerInspector
}

// NewContainerRuntimeSource constructs a ContainerRuntimeSource bound to a
// container-runtime client.
func NewContainerRuntimeSource(inspector ContainerInspector) *ContainerRuntimeSource {
	return &ContainerRuntimeSource{Inspector: inspector}
}

func (s *ContainerRuntimeSource) Collect(ctx context.Context) ([]Entry, error) {
	containers, err := s.Inspector.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(containers))
	for _, c := range containers {
		if c.BridgeIP == "" {
			continue
		}

		if taskID, ok := c.Labels["MESOS_TASK_ID"]; ok {
			entries = append(entries, Entry{IP: c.BridgeIP, Identity: taskID})
			continue
		}

		service, hasService := c.Labels["paasta_service"]
		instance, hasInstance := c.Labels["paasta_instance"]
		if hasService && hasInstance {
			entries = append(entries, Entry{IP: c.BridgeIP, Identity: normalizeIdentity(service, instance)})
		}
	}

	return entries, nil
}

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	corev1 "k8s.io/api/core/v1"
)

// kubeletPodsEndpoint is the canonical deprecated kubelet read-only pods
// endpoint this adapter polls. The original source has a known typo'd
// variant of this address in one deployment path; this implementation
// only ever uses the correct, working address (spec §9 Open Question
// resolution).
const kubeletPodsEndpoint = "http://169.254.255.254:10255/pods/"

const (
	labelService  = "paasta.yelp.com/service"
	labelInstance = "paasta.yelp.com/instance"
)

// OrchestratorSource extracts (ip, identity) pairs from the kubelet's pod
// listing, identifying each pod via its paasta service/instance labels
// (spec §4 "Inventory adapters").
type OrchestratorSource struct {
	Client   *http.Client
	Endpoint string
}

// NewOrchestratorSource constructs an OrchestratorSource against the
// canonical kubelet endpoint using http.DefaultClient.
func NewOrchestratorSource() *OrchestratorSource {
	return &OrchestratorSource{Client: http.DefaultClient, Endpoint: kubeletPodsEndpoint}
}

func (s *OrchestratorSource) Collect(ctx context.Context) ([]Entry, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = kubeletPodsEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building kubelet request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting kubelet at %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kubelet %s returned status %d", endpoint, resp.StatusCode)
	}

	var pods corev1.PodList
	if err := json.NewDecoder(resp.Body).Decode(&pods); err != nil {
		return nil, fmt.Errorf("decoding kubelet pod list: %w", err)
	}

	entries := make([]Entry, 0, len(pods.Items))
	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodFailed {
			continue
		}
		if pod.Status.PodIP == "" {
			continue
		}

		service, hasService := pod.Labels[labelService]
		instance, hasInstance := pod.Labels[labelInstance]
		if !hasService || !hasInstance {
			continue
		}

		entries = append(entries, Entry{
			IP:       pod.Status.PodIP,
			Identity: normalizeIdentity(service, instance),
		})
	}

	return entries, nil
}

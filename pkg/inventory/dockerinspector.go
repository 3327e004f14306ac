package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// defaultDockerSocket is the conventional Docker Engine API UNIX socket
// path. DockerInspector talks to it directly over HTTP rather than
// through a generated SDK client, the same way pkg/mapsync dials the
// proxy's admin socket: a narrow wire contract over a local UNIX socket
// doesn't need a full client library.
const defaultDockerSocket = "/var/run/docker.sock"

type dockerContainerSummary struct {
	ID     string            `json:"Id"`
	Labels map[string]string `json:"Labels"`
}

type dockerContainerInspect struct {
	Config struct {
		Labels map[string]string `json:"Labels"`
	} `json:"Config"`
	NetworkSettings struct {
		IPAddress string `json:"IPAddress"`
		Networks  map[string]struct {
			IPAddress string `json:"IPAddress"`
		} `json:"Networks"`
	} `json:"NetworkSettings"`
}

// DockerInspector implements ContainerInspector against the local Docker
// Engine API over its UNIX socket (spec §4 "Inventory adapters", the
// container-runtime inspection call).
type DockerInspector struct {
	SocketPath string
	Client     *http.Client
}

// NewDockerInspector constructs a DockerInspector against the default
// Docker socket.
func NewDockerInspector() *DockerInspector {
	return &DockerInspector{
		SocketPath: defaultDockerSocket,
		Client:     dockerHTTPClient(defaultDockerSocket),
	}
}

func dockerHTTPClient(socketPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: 5 * time.Second}
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
		Timeout: 10 * time.Second,
	}
}

func (d *DockerInspector) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return dockerHTTPClient(d.socketPath())
}

func (d *DockerInspector) socketPath() string {
	if d.SocketPath != "" {
		return d.SocketPath
	}
	return defaultDockerSocket
}

// ListContainers enumerates running containers and their bridge-network
// IP and labels.
func (d *DockerInspector) ListContainers(ctx context.Context) ([]ContainerInfo, error) {
	var summaries []dockerContainerSummary
	if err := d.get(ctx, "http://docker/containers/json", &summaries); err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	infos := make([]ContainerInfo, 0, len(summaries))
	for _, s := range summaries {
		var detail dockerContainerInspect
		if err := d.get(ctx, fmt.Sprintf("http://docker/containers/%s/json", s.ID), &detail); err != nil {
			return nil, fmt.Errorf("inspecting container %s: %w", s.ID, err)
		}

		// Only the bridge network counts (matching the original's
		// extraction, which skips any container lacking one entirely);
		// the deprecated top-level IPAddress field is a fallback for the
		// pre-multi-network API shape, not a substitute for a missing
		// bridge network.
		var ip string
		if len(detail.NetworkSettings.Networks) > 0 {
			ip = detail.NetworkSettings.Networks["bridge"].IPAddress
		} else {
			ip = detail.NetworkSettings.IPAddress
		}

		infos = append(infos, ContainerInfo{BridgeIP: ip, Labels: detail.Config.Labels})
	}

	return infos, nil
}

func (d *DockerInspector) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("docker API %s returned status %d", url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

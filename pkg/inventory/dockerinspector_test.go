package inventory

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnixTestServer(t *testing.T, handler http.Handler) (*httptest.Server, string) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "docker.sock")
	listener, err := net.Listen("unix", sockPath)
	require.NoError(t, err)

	server := &httptest.Server{Listener: listener, Config: &http.Server{Handler: handler}}
	server.Start()
	return server, sockPath
}

func TestDockerInspector_ListContainers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id": "abc123", "Labels": {}}]`))
	})
	mux.HandleFunc("/containers/abc123/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Config": {"Labels": {"paasta_service": "widgets", "paasta_instance": "main"}},
			"NetworkSettings": {"IPAddress": "", "Networks": {"bridge": {"IPAddress": "10.0.0.5"}}}
		}`))
	})

	server, sockPath := newUnixTestServer(t, mux)
	defer server.Close()

	inspector := &DockerInspector{SocketPath: sockPath, Client: dockerHTTPClient(sockPath)}
	infos, err := inspector.ListContainers(context.Background())
	require.NoError(t, err)

	require.Len(t, infos, 1)
	assert.Equal(t, "10.0.0.5", infos[0].BridgeIP)
	assert.Equal(t, "widgets", infos[0].Labels["paasta_service"])
}

func TestDockerInspector_ListContainers_IgnoresNonBridgeNetworks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id": "abc123", "Labels": {}}]`))
	})
	mux.HandleFunc("/containers/abc123/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Config": {"Labels": {}},
			"NetworkSettings": {"IPAddress": "", "Networks": {
				"overlay": {"IPAddress": "10.1.0.9"},
				"bridge": {"IPAddress": "10.0.0.5"}
			}}
		}`))
	})

	server, sockPath := newUnixTestServer(t, mux)
	defer server.Close()

	inspector := &DockerInspector{SocketPath: sockPath, Client: dockerHTTPClient(sockPath)}
	infos, err := inspector.ListContainers(context.Background())
	require.NoError(t, err)

	require.Len(t, infos, 1)
	assert.Equal(t, "10.0.0.5", infos[0].BridgeIP)
}

func TestDockerInspector_ListContainers_NoBridgeNetworkLeavesIPEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id": "abc123", "Labels": {}}]`))
	})
	mux.HandleFunc("/containers/abc123/json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Config": {"Labels": {"MESOS_TASK_ID": "task-1"}},
			"NetworkSettings": {"IPAddress": "10.0.0.99", "Networks": {"overlay": {"IPAddress": "10.1.0.9"}}}
		}`))
	})

	server, sockPath := newUnixTestServer(t, mux)
	defer server.Close()

	inspector := &DockerInspector{SocketPath: sockPath, Client: dockerHTTPClient(sockPath)}
	infos, err := inspector.ListContainers(context.Background())
	require.NoError(t, err)

	require.Len(t, infos, 1)
	assert.Empty(t, infos[0].BridgeIP)

	// Collect() built on top of ListContainers skips entries with no bridge IP.
	src := NewContainerRuntimeSource(inspector)
	entries, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDockerInspector_ListContainers_ErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server, sockPath := newUnixTestServer(t, mux)
	defer server.Close()

	inspector := &DockerInspector{SocketPath: sockPath, Client: dockerHTTPClient(sockPath)}
	_, err := inspector.ListContainers(context.Background())
	assert.Error(t, err)
}

func TestNewDockerInspector_Defaults(t *testing.T) {
	inspector := NewDockerInspector()
	assert.Equal(t, defaultDockerSocket, inspector.SocketPath)
	assert.NotNil(t, inspector.Client)
}

func TestDockerInspector_ClientFallback(t *testing.T) {
	inspector := &DockerInspector{}
	assert.Equal(t, defaultDockerSocket, inspector.socketPath())
	assert.NotNil(t, inspector.client())
}

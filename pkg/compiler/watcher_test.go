package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, sortedKeys(m))
}

func TestSortedKeys_Empty(t *testing.T) {
	assert.Empty(t, sortedKeys(nil))
}

func TestDefaultTimeout(t *testing.T) {
	assert.Nil(t, defaultTimeout(namespace.Namespace{}))

	client := 500
	server := 1000
	timeout := defaultTimeout(namespace.Namespace{TimeoutClientMs: &client, TimeoutServerMs: &server})
	require.NotNil(t, timeout)
	assert.Equal(t, 1000, *timeout)
}

func TestGenerateHAProxyForWatcher_HTTPMode(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{Mode: "http"}

	haproxy := generateHAProxyForWatcher("widgets", decl, cfg)

	assert.Contains(t, haproxy.ServerOptions, "observe layer7")
	assert.Contains(t, haproxy.Frontend, "option httplog")
	assert.Contains(t, haproxy.Backend, "http-check send-state")
}

func TestGenerateHAProxyForWatcher_TCPMode(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{Mode: "tcp"}

	haproxy := generateHAProxyForWatcher("widgets", decl, cfg)

	assert.Contains(t, haproxy.ServerOptions, "observe layer4")
	assert.Contains(t, haproxy.Frontend, "mode tcp")
	assert.Contains(t, haproxy.Backend, "mode tcp")
	assert.NotContains(t, haproxy.Backend, "no option forceclose")
}

func TestGenerateHAProxyForWatcher_ExtraHeadersDeterministicOrder(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{
		ExtraHeaders: map[string]string{"X-Zeta": "z", "X-Alpha": "a"},
	}

	for i := 0; i < 5; i++ {
		haproxy := generateHAProxyForWatcher("widgets", decl, cfg)
		require.GreaterOrEqual(t, len(haproxy.Backend), 2)
		assert.Equal(t, `reqidel ^X-Alpha:.*`, haproxy.Backend[0])
		assert.Equal(t, `reqidel ^X-Zeta:.*`, haproxy.Backend[1])
	}
}

func TestGenerateHAProxyForWatcher_Keepalive(t *testing.T) {
	cfg := defaultTestConfig()
	keepalive := true
	decl := namespace.Namespace{Mode: "http", Keepalive: &keepalive}

	haproxy := generateHAProxyForWatcher("widgets", decl, cfg)
	assert.Contains(t, haproxy.Backend, "option http-keep-alive")
}

func TestGenerateHAProxyForWatcher_Balance(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{Balance: "roundrobin"}

	haproxy := generateHAProxyForWatcher("widgets", decl, cfg)
	assert.Contains(t, haproxy.Backend, "balance roundrobin")
}

func TestGenerateHAProxyForWatcher_AllRedisp(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.HAProxyRespectAllRedisp = true
	allRedisp := true
	decl := namespace.Namespace{AllRedisp: &allRedisp}

	haproxy := generateHAProxyForWatcher("widgets", decl, cfg)
	assert.Contains(t, haproxy.Backend, "option allredisp")
}

func TestBaseWatcherConfig(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{Mode: "http"}

	svc, err := baseWatcherConfig("widgets", decl, []string{"zk1:2181"}, cfg, func(string) (string, error) { return "", nil })
	require.NoError(t, err)

	assert.Equal(t, "zookeeper", svc.Discovery.Method)
	assert.Equal(t, "/smartstack/global/widgets", svc.Discovery.Path)
	assert.Equal(t, []string{"zk1:2181"}, svc.Discovery.Hosts)
	require.NotNil(t, svc.HAProxy)
}

func TestBaseWatcherConfig_ChaosDrop(t *testing.T) {
	cfg := defaultTestConfig()
	decl := namespace.Namespace{
		Chaos: map[string]map[string]map[string]string{
			"habitat": {"my_habitat": {"fail": "drop"}},
		},
	}

	svc, err := baseWatcherConfig("widgets", decl, nil, cfg, func(string) (string, error) { return "my_habitat", nil })
	require.NoError(t, err)
	assert.Contains(t, svc.HAProxy.Frontend, "tcp-request content reject")
}

func TestGenerateNginxForWatcher(t *testing.T) {
	cfg := defaultTestConfig()
	port := 20000
	decl := namespace.Namespace{ProxyPort: &port}

	svc, err := generateNginxForWatcher("widgets", decl, cfg)
	require.NoError(t, err)

	assert.True(t, svc.HAProxy.Disabled)
	assert.True(t, svc.FileOutput.Disabled)
	assert.Equal(t, 20000, svc.Nginx.Port)
	assert.Equal(t, "base", svc.Discovery.Method)
}

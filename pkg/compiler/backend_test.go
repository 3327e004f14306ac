package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synapse-tools-go/pkg/core/config"
)

func TestGetBackendName_Default(t *testing.T) {
	assert.Equal(t, "widgets", GetBackendName("widgets", "region", "region", defaultSection))
}

func TestGetBackendName_AdvertiseExtension(t *testing.T) {
	assert.Equal(t, "widgets.superregion", GetBackendName("widgets", "region", "superregion", defaultSection))
}

func TestGetBackendName_EndpointExtension(t *testing.T) {
	assert.Equal(t, "widgets.__foo_timeouts", GetBackendName("widgets", "region", "region", "/foo"))
}

func TestGetBackendName_Both(t *testing.T) {
	name := GetBackendName("widgets", "region", "superregion", "/foo/bar")
	assert.Equal(t, "widgets.superregion.__foo__bar_timeouts", name)
}

func TestBackendsForService_CartesianProduct(t *testing.T) {
	descriptors := backendsForService([]string{"region", "superregion"}, []string{"/foo"})
	require.Len(t, descriptors, 4)
	assert.Equal(t, backendDescriptor{AdvertiseType: "region", EndpointName: "/foo"}, descriptors[0])
	assert.Equal(t, backendDescriptor{AdvertiseType: "region", EndpointName: defaultSection}, descriptors[1])
	assert.Equal(t, backendDescriptor{AdvertiseType: "superregion", EndpointName: "/foo"}, descriptors[2])
	assert.Equal(t, backendDescriptor{AdvertiseType: "superregion", EndpointName: defaultSection}, descriptors[3])
}

func TestBackendsForService_NoEndpoints(t *testing.T) {
	descriptors := backendsForService([]string{"region"}, nil)
	require.Len(t, descriptors, 1)
	assert.Equal(t, defaultSection, descriptors[0].EndpointName)
}

func TestSocketPath(t *testing.T) {
	cfg := config.Config{
		HAProxyServiceSocketsFmt:   config.DefaultHAProxyServiceSocketsFmt,
		HAProxyServiceProxySockFmt: config.DefaultHAProxyServiceProxySockFmt,
	}

	path, err := socketPath(cfg, "widgets", false)
	require.NoError(t, err)
	assert.Equal(t, "/var/run/synapse/sockets/widgets.sock", path)

	proxyPath, err := socketPath(cfg, "widgets", true)
	require.NoError(t, err)
	assert.Equal(t, "/var/run/synapse/sockets/widgets.prxy", proxyPath)
}

func TestGenerateACLsForService_NoDowncasting(t *testing.T) {
	available := []string{"ecosystem", "superregion", "region", "habitat"}

	// discoverType "habitat" is narrower than advertiseType "region": an
	// ACL for it would downcast, so it must be skipped (spec §9).
	acls := generateACLsForService("widgets", "habitat", []string{"region", "habitat"}, nil, available)

	for _, acl := range acls {
		assert.NotContains(t, acl, "widgets.region")
	}
	assert.NotEmpty(t, acls)
}

func TestGenerateACLsForService_EndpointPathACL(t *testing.T) {
	available := []string{"ecosystem", "superregion", "region", "habitat"}

	acls := generateACLsForService("widgets", "region", []string{"region"}, []string{"/foo"}, available)

	require.Len(t, acls, 5)
	assert.Contains(t, acls[0], "path_beg /foo")
}

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChaosOptions_Drop(t *testing.T) {
	acls, discovery := chaosOptions(map[string]string{"fail": "drop"}, DiscoveryConfig{Method: "zookeeper"})
	assert.Equal(t, []string{"tcp-request content reject"}, acls)
	assert.Equal(t, "zookeeper", discovery.Method)
}

func TestChaosOptions_Error503(t *testing.T) {
	acls, discovery := chaosOptions(map[string]string{"fail": "error_503"}, DiscoveryConfig{Method: "zookeeper"})
	assert.Nil(t, acls)
	assert.Equal(t, "base", discovery.Method)
}

func TestChaosOptions_Delay(t *testing.T) {
	acls, discovery := chaosOptions(map[string]string{"delay": "100"}, DiscoveryConfig{Method: "zookeeper"})
	assert.Equal(t, []string{
		"tcp-request inspect-delay 100",
		"tcp-request content accept if WAIT_END",
	}, acls)
	assert.Equal(t, "zookeeper", discovery.Method)
}

func TestChaosOptions_None(t *testing.T) {
	acls, discovery := chaosOptions(map[string]string{}, DiscoveryConfig{Method: "zookeeper"})
	assert.Nil(t, acls)
	assert.Equal(t, "zookeeper", discovery.Method)
}

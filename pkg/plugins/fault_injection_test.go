package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"synapse-tools-go/pkg/core/config"
	"synapse-tools-go/pkg/namespace"
)

func TestFaultInjection_AlwaysOn(t *testing.T) {
	p := NewFaultInjection("widgets", namespace.Namespace{}, config.Config{})
	c := p.Contribute()

	assert.Equal(t, []string{"timeout tarpit 60s"}, c.Defaults)
	assert.Equal(t, []string{
		"acl to_be_tarpitted hdr_sub(X-Ctx-Tarpit) -i widgets",
		"reqtarpit . if to_be_tarpitted",
	}, c.Backend)
}

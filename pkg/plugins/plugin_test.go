package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupAppend(t *testing.T) {
	dst := []string{"a", "b"}
	result := dedupAppend(dst, []string{"b", "c", "a", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, result)
}

func TestDedupPrepend(t *testing.T) {
	dst := []string{"a", "b"}
	result := dedupPrepend(dst, []string{"b", "c", "d"})
	assert.Equal(t, []string{"c", "d", "a", "b"}, result)
}

func TestApplyBlock_Append(t *testing.T) {
	result := ApplyBlock([]string{"existing"}, []string{"existing", "new"}, false)
	assert.Equal(t, []string{"existing", "new"}, result)
}

func TestApplyBlock_Prepend(t *testing.T) {
	result := ApplyBlock([]string{"existing"}, []string{"new", "existing"}, true)
	assert.Equal(t, []string{"new", "existing"}, result)
}

func TestRegistry_Order(t *testing.T) {
	var names []string
	for _, nf := range Registry {
		names = append(names, nf.Name)
	}
	assert.Equal(t, []string{
		"fault_injection",
		"proxied_through",
		"logging",
		"path_based_routing",
		"source_required",
	}, names)
}

package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var order = []string{"ecosystem", "superregion", "region", "habitat"}

func TestDepthIndex(t *testing.T) {
	idx := DepthIndex(order)
	assert.Equal(t, 0, idx["ecosystem"])
	assert.Equal(t, 1, idx["superregion"])
	assert.Equal(t, 2, idx["region"])
	assert.Equal(t, 3, idx["habitat"])
}

func TestFilterAndSortAdvertise(t *testing.T) {
	result := FilterAndSortAdvertise([]string{"region", "superregion", "nonexistent"}, order)
	assert.Equal(t, []string{"region", "superregion"}, result)
}

func TestFilterAndSortAdvertise_Empty(t *testing.T) {
	assert.Empty(t, FilterAndSortAdvertise(nil, order))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(order, "region"))
	assert.False(t, Contains(order, "continent"))
}

func TestCompareDepth(t *testing.T) {
	assert.True(t, CompareDepth("region", "habitat", order), "habitat is no broader than region")
	assert.True(t, CompareDepth("region", "region", order))
	assert.False(t, CompareDepth("habitat", "region", order), "region is broader than habitat: downcasting")
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "region"), []byte("  my_region\n"), 0644))

	src := NewDirSource(dir, order)
	assert.Equal(t, order, src.AvailableLocationTypes())

	loc, err := src.CurrentLocation("region")
	require.NoError(t, err)
	assert.Equal(t, "my_region", loc)
}

func TestDirSource_MissingFile(t *testing.T) {
	src := NewDirSource(t.TempDir(), order)
	_, err := src.CurrentLocation("region")
	assert.Error(t, err)
}

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrderAndSize(t *testing.T) {
	names := Catalog()
	require.Len(t, names, 13)
	assert.Equal(t, Authentication, names[0])
	assert.Equal(t, ExternalAPIs, names[len(names)-1])

	// mutating the returned slice must not leak into the registry
	names[0] = "tampered"
	assert.Equal(t, Authentication, Catalog()[0])
}

func TestRequiredIsSubsetOfCatalog(t *testing.T) {
	for _, name := range Required() {
		assert.True(t, IsKnown(name), "required feature %q missing from catalog", name)
	}
	assert.False(t, IsKnown("deployment"))
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(Caching)
	require.True(t, ok)
	assert.Equal(t, "Caching", e.Title)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestNewMapCoversCatalog(t *testing.T) {
	m := NewMap()
	require.Len(t, m, len(Catalog()))
	for _, name := range Catalog() {
		assert.Equal(t, Verdict{}, m[name])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMap()
	c := m.Clone()
	c[Database] = Verdict{Present: true}
	assert.False(t, m[Database].Present)
	assert.Nil(t, Map(nil).Clone())
}

func TestEmptyRepositoryMap(t *testing.T) {
	m := EmptyRepositoryMap()
	require.Len(t, m, len(Catalog()))
	for _, name := range Catalog() {
		assert.False(t, m[name].Present)
		assert.Equal(t, NotFound, m[name].Details)
	}
	assert.Zero(t, m.PresentCount())
}

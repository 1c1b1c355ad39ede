package merger

import (
	"testing"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkResult(verdicts map[features.Name]features.Verdict) features.Map {
	m := features.NewMap()
	for k, v := range verdicts {
		m[k] = v
	}
	return m
}

func TestFinalize_NoMerges(t *testing.T) {
	got := NewAccumulator().Finalize()
	assert.Equal(t, features.EmptyRepositoryMap(), got)
}

func TestMerge_PresentWinsOverAbsent(t *testing.T) {
	a := NewAccumulator()
	a.Merge(chunkResult(map[features.Name]features.Verdict{
		features.Authentication: {Present: true, Details: "JWT found"},
	}))
	a.Merge(chunkResult(map[features.Name]features.Verdict{
		features.Authentication: {Present: false, Details: "nothing here"},
	}))

	got := a.Finalize()
	auth := got[features.Authentication]
	assert.True(t, auth.Present)
	assert.Contains(t, auth.Details, "JWT found")
	assert.NotContains(t, auth.Details, "nothing here")
	assert.Equal(t, 2, a.Merged())
}

func TestMerge_Idempotent(t *testing.T) {
	r := chunkResult(map[features.Name]features.Verdict{
		features.Caching:  {Present: true, Details: "redis"},
		features.Database: {Present: true, Details: "postgres via pgx"},
	})

	once := NewAccumulator()
	once.Merge(r)

	twice := NewAccumulator()
	twice.Merge(r)
	twice.Merge(r)

	assert.Equal(t, once.Finalize(), twice.Finalize())
}

func TestMerge_OrderIndependent(t *testing.T) {
	results := []features.Map{
		chunkResult(map[features.Name]features.Verdict{features.Caching: {Present: true, Details: "redis"}}),
		chunkResult(map[features.Name]features.Verdict{features.Storage: {Present: true, Details: "s3 uploads"}}),
		chunkResult(map[features.Name]features.Verdict{features.Caching: {Present: false}}),
		chunkResult(map[features.Name]features.Verdict{features.MessageQueues: {Present: true, Details: "kafka"}}),
	}

	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}

	var reference map[features.Name]bool
	for _, perm := range permutations {
		a := NewAccumulator()
		for _, i := range perm {
			a.Merge(results[i])
		}
		present := make(map[features.Name]bool)
		for name, f := range a.Finalize() {
			present[name] = f.Present
		}
		if reference == nil {
			reference = present
			continue
		}
		assert.Equal(t, reference, present, "permutation %v", perm)
	}

	assert.True(t, reference[features.Caching])
	assert.True(t, reference[features.Storage])
	assert.True(t, reference[features.MessageQueues])
	assert.False(t, reference[features.Monolith])
}

func TestFinalize_DedupKeepsFirstSeenOrder(t *testing.T) {
	a := NewAccumulator()
	for _, d := range []string{"b", "a", "b", "c", "a"} {
		a.Merge(chunkResult(map[features.Name]features.Verdict{
			features.APIExposed: {Present: true, Details: d},
		}))
	}

	f := a.Finalize()[features.APIExposed]
	assert.Equal(t, []string{"b", "a", "c"}, f.Evidence)
	assert.Equal(t, "b\na\nc", f.Details)
}

func TestFinalize_PresentWithoutEvidenceIsNotFound(t *testing.T) {
	a := NewAccumulator()
	a.Merge(chunkResult(map[features.Name]features.Verdict{
		features.Monolith: {Present: true, Details: "   "},
	}))

	f := a.Finalize()[features.Monolith]
	assert.True(t, f.Present)
	assert.Equal(t, features.NotFound, f.Details)
	assert.Empty(t, f.Evidence)
}

func TestMerge_CollectsImprovements(t *testing.T) {
	a := NewAccumulator()
	a.Merge(chunkResult(map[features.Name]features.Verdict{
		features.Caching: {Present: false, Improvements: "Should implement Redis caching for user sessions"},
	}))
	a.Merge(chunkResult(map[features.Name]features.Verdict{
		features.Caching: {Present: false, Improvements: "Should implement Redis caching for user sessions"},
	}))

	f := a.Finalize()[features.Caching]
	assert.False(t, f.Present)
	require.Len(t, f.Improvements, 1)
	assert.Equal(t, features.NotFound, f.Details)
}

func TestMerge_IgnoresUnknownFeatures(t *testing.T) {
	a := NewAccumulator()
	a.Merge(features.Map{"blockchain": {Present: true, Details: "web3"}})

	got := a.Finalize()
	assert.Len(t, got, len(features.Catalog()))
	_, ok := got["blockchain"]
	assert.False(t, ok)
}

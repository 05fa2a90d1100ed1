package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_IndependentInstances(t *testing.T) {
	a := NewCollector("alpha")
	b := NewCollector("beta")

	require.NotSame(t, a, b)
	require.NotSame(t, a.Registry(), b.Registry())

	a.RoadmapsCreated.Inc()

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "alpha_roadmaps_created_total", "namespace must come from the constructor argument")
}

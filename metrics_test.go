package bstmap

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	m := quietMap()
	for _, k := range []int{5, 3, 8, 1} {
		m.Put(k, k)
	}
	m.Put(8, 80)
	m.Remove(5) // two children, routing
	m.Remove(1) // leaf, unlinked
	m.Put(5, 5) // revival

	c := NewCollector("test", m)
	assert.Equal(t, 7, testutil.CollectAndCount(c))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() != nil {
				values[mf.GetName()] = metric.GetCounter().GetValue()
			} else {
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, map[string]float64{
		"test_bstmap_retries_total":       0,
		"test_bstmap_inserts_total":       4,
		"test_bstmap_updates_total":       1,
		"test_bstmap_revivals_total":      1,
		"test_bstmap_routing_marks_total": 1,
		"test_bstmap_unlinks_total":       1,
		"test_bstmap_retired_nodes":       1,
	}, values)
}

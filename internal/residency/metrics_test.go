package residency

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorGathers(t *testing.T) {
	m := NewWithConfig(ManagerConfig{ImageBudget: 100})
	stub := newStubInstantiator(40)
	m.BindInstantiator(stub)
	register(t, m, 1)
	m.Iterate(nil)

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(m, "assetd", nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]float64{}
	for _, fam := range families {
		if len(fam.Metric) == 1 {
			mtr := fam.Metric[0]
			switch {
			case mtr.Gauge != nil:
				byName[fam.GetName()] = mtr.Gauge.GetValue()
			case mtr.Counter != nil:
				byName[fam.GetName()] = mtr.Counter.GetValue()
			}
		}
	}
	if byName["assetd_residency_budget_bytes"] != 100 {
		t.Fatalf("budget gauge wrong: %v", byName)
	}
	if byName["assetd_residency_consumed_bytes"] != 40 {
		t.Fatalf("consumed gauge wrong: %v", byName)
	}
	if byName["assetd_residency_activations_total"] != 1 {
		t.Fatalf("activations counter wrong: %v", byName)
	}
	if byName["assetd_residency_loading_assets"] != 1 {
		t.Fatalf("loading gauge wrong: %v", byName)
	}
}

// Two managers with distinct const labels can share a registry.
func TestCollectorMultipleManagers(t *testing.T) {
	reg := prometheus.NewRegistry()
	for _, name := range []string{"a", "b"} {
		m := New()
		if err := reg.Register(NewCollector(m, "assetd", prometheus.Labels{"manager": name})); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

package runconfig

import "testing"

func TestSweepConfig_ToParameterSpace(t *testing.T) {
	cfg := SweepConfig{
		ParameterSpace: []ParameterSpec{
			{Name: "atr_period", Values: []float64{10, 14, 21}},
			{Name: "multiplier", Values: []float64{1.5, 2, 2.5}},
		},
	}

	ps, err := cfg.ToParameterSpace()
	if err != nil {
		t.Fatalf("ToParameterSpace: %v", err)
	}
	if len(ps.Names) != 2 || ps.Names[0] != "atr_period" || ps.Names[1] != "multiplier" {
		t.Fatalf("expected declaration order preserved, got %v", ps.Names)
	}
	if ps.Size() != 9 {
		t.Errorf("expected a 3x3 product of size 9, got %d", ps.Size())
	}
}

func TestSweepConfig_ToParameterSpace_RejectsEmpty(t *testing.T) {
	if _, err := (SweepConfig{}).ToParameterSpace(); err == nil {
		t.Fatal("expected an error for an empty parameter_space")
	}
}

func TestSweepConfig_ResolveObjective_DefaultsToSharpe(t *testing.T) {
	cfg := SweepConfig{Objective: "bogus"}
	obj := cfg.ResolveObjective()
	if obj == nil {
		t.Fatal("expected a non-nil objective function")
	}
}

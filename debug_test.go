package thicket

import "testing"

func TestDebugModeResolves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTreeDepth = 1
	s, err := NewSceneWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.SetDebugMode(true)
	a := addNode(t, s, s.Root(), rect(0, 0, 1, 1))
	addNode(t, s, a, rect(0, 0, 1, 1)) // exceeds depth, logs a warning
	st := s.Resolve()
	if st.Transform != 3 {
		t.Errorf("transform writes = %d, want 3", st.Transform)
	}
}

func TestDebugModeWideNode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.MaxChildren = 2
	s, err := NewSceneWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 4 {
		addNode(t, s, s.Root(), rect(float64(i), 0, 1, 1))
	}
	if st := s.Resolve(); st.Spatial != 5 {
		t.Errorf("spatial writes = %d, want 5", st.Spatial)
	}
}

func TestDebugCheckWithoutLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTreeDepth = 0
	cfg.MaxChildren = 0
	s, err := NewSceneWithConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.SetDebugMode(true)
	parent := s.Root()
	for range 40 {
		parent = addNode(t, s, parent, rect(0, 0, 1, 1))
	}
	s.debugCheckNode(parent)
}

package grid

import "testing"

// stubEnv is the smallest possible Environment for resolution tests.
type stubEnv struct {
	Environment
	name string
}

func TestMultiMixResolve(t *testing.T) {
	tests := []struct {
		name    string
		mixes   []string
		want    string
		wantErr bool
	}{
		{"picks alphabetically first", []string{"b_mix", "a_mix"}, "a_mix", false},
		{"single mix", []string{"only"}, "only", false},
		{"case sensitive ordering", []string{"Zeta", "alpha"}, "Zeta", false},
		{"empty multimix", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MultiMix{}
			for _, k := range tt.mixes {
				m[k] = &stubEnv{name: k}
			}
			env, err := m.Resolve()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Resolve() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got := env.(*stubEnv).name; got != tt.want {
				t.Errorf("Resolve() picked %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTarget(t *testing.T) {
	single := &stubEnv{name: "single"}

	env, err := ResolveTarget(single)
	if err != nil {
		t.Fatalf("ResolveTarget(Environment) error: %v", err)
	}
	if env != Environment(single) {
		t.Error("ResolveTarget(Environment) did not return the same instance")
	}

	env, err = ResolveTarget(MultiMix{"b": &stubEnv{name: "b"}, "a": &stubEnv{name: "a"}})
	if err != nil {
		t.Fatalf("ResolveTarget(MultiMix) error: %v", err)
	}
	if got := env.(*stubEnv).name; got != "a" {
		t.Errorf("ResolveTarget(MultiMix) picked %q, want %q", got, "a")
	}

	if _, err := ResolveTarget(42); err == nil {
		t.Error("ResolveTarget(int) expected error, got nil")
	}
}

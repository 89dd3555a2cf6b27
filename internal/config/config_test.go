package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != "none" {
		t.Errorf("expected controller none, got %s", cfg.Controller)
	}
	if cfg.Physics.Dt != 0.025 {
		t.Errorf("expected dt 0.025, got %f", cfg.Physics.Dt)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPhysicsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Physics.Params()
	if PhysicsFromParams(p) != cfg.Physics {
		t.Errorf("physics config did not survive conversion")
	}
	if p.LiftZone.X != 10 || p.LiftZone.Z != 10 || p.LiftZone.HalfWidth != 1 {
		t.Errorf("unexpected lift zone %+v", p.LiftZone)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("freefall")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Start.Y != 20 {
		t.Errorf("expected start altitude 20, got %f", cfg.Start.Y)
	}

	cfg.Plan[0].Thrust[0] = 99
	if Presets["freefall"].Plan[0].Thrust[0] != 0 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := Presets[name].Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidatePlan(t *testing.T) {
	tests := []struct {
		name    string
		plan    []Command
		wantErr bool
	}{
		{"empty", nil, false},
		{"thrust and advance", []Command{{Thrust: []float64{1}}, {Advance: 1}}, false},
		{"reset", []Command{{Reset: true}}, false},
		{"blank step", []Command{{}}, true},
		{"two actions", []Command{{Thrust: []float64{1}, Advance: 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Plan = tt.plan
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.yaml")
	cfg := GetPreset("liftoff")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Seed != 42 || loaded.Name != "liftoff" {
		t.Errorf("unexpected config %+v", loaded)
	}
	if len(loaded.Plan) != len(cfg.Plan) {
		t.Fatalf("expected %d plan steps, got %d", len(cfg.Plan), len(loaded.Plan))
	}
	if loaded.Plan[0].Thrust[0] != 3 || loaded.Plan[1].Advance != 2 {
		t.Errorf("unexpected plan %+v", loaded.Plan)
	}
}

func TestLoadRejectsBadPhysics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	cfg := DefaultConfig()
	cfg.Physics.GroundFriction = 1.5
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for friction outside (0, 1)")
	}
}

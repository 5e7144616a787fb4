package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	g := cfg.Galaxy
	if g.Count != 100000 || g.Branches != 1 || g.Turns != 3 || g.Radius != 5 {
		t.Errorf("unexpected galaxy defaults: %+v", g)
	}
	if g.InsideColor != "#ff6030" || g.OutsideColor != "#1b3984" {
		t.Errorf("unexpected colour defaults: %q %q", g.InsideColor, g.OutsideColor)
	}
	if cfg.Render.FOV != 75 || cfg.Render.CameraX != 3 {
		t.Errorf("unexpected camera defaults: %+v", cfg.Render)
	}
}

func TestLoadSeed(t *testing.T) {
	t.Setenv("GALAXY_SEED", "18446744073709551615")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Galaxy.Seed != 18446744073709551615 {
		t.Errorf("seed = %d", cfg.Galaxy.Seed)
	}

	for _, bad := range []string{"-1", "12abc"} {
		t.Setenv("GALAXY_SEED", bad)
		if _, err := Load(); err == nil || !strings.Contains(err.Error(), "GALAXY_SEED") {
			t.Errorf("GALAXY_SEED=%q: err = %v", bad, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name: "defaults are valid",
			env:  map[string]string{"DB_ENABLED": "false"},
		},
		{
			name:    "auth without secret",
			env:     map[string]string{"AUTH_ENABLED": "true"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "short secret",
			env:     map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": "short"},
			wantErr: "at least 32",
		},
		{
			name:    "zero branches",
			env:     map[string]string{"GALAXY_BRANCHES": "0"},
			wantErr: "GALAXY_BRANCHES",
		},
		{
			name:    "zero turns",
			env:     map[string]string{"GALAXY_TURNS": "0"},
			wantErr: "GALAXY_TURNS",
		},
		{
			name:    "zero radius",
			env:     map[string]string{"GALAXY_RADIUS": "0"},
			wantErr: "GALAXY_RADIUS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			err = cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsOperator(t *testing.T) {
	t.Setenv("OPERATOR_LOGINS", "octocat, hubot")
	cfg, _ := Load()

	if !cfg.IsOperator("hubot") {
		t.Error("hubot should be an operator")
	}
	if cfg.IsOperator("mallory") {
		t.Error("mallory should not be an operator")
	}
}

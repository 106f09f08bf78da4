package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMachineDef(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "anim.yaml")

	data := `name: player
initial: idle-down
rules:
  - name: start
    when: 'starts_with(state, "idle-") and walking'
    to: '"walk-" .. facing'
  - when: 'not walking'
    to: '"idle-" .. suffix(state)'
`
	if err := os.WriteFile(testFile, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	def, err := LoadMachineDef(testFile)
	if err != nil {
		t.Fatalf("LoadMachineDef() failed: %v", err)
	}
	if def.Initial != "idle-down" {
		t.Errorf("Expected initial 'idle-down', got '%s'", def.Initial)
	}
	if len(def.Rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(def.Rules))
	}
	// 未命名的规则获得默认名称
	if def.Rules[1].Name != "rule-1" {
		t.Errorf("Expected default rule name 'rule-1', got '%s'", def.Rules[1].Name)
	}
}

func TestParseMachineDefErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no initial", "rules: [{when: 'true', to: '\"a\"'}]", "initial state"},
		{"no rules", "initial: a", "at least one rule"},
		{"empty to", "initial: a\nrules: [{name: r, when: 'true'}]", "when and to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMachineDef([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

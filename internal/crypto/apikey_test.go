package crypto

import (
	"strings"
	"testing"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key, "emk_") {
		t.Fatalf("key = %q, want emk_ prefix", key)
	}
	if err := ValidateAPIKeyFormat(key); err != nil {
		t.Fatalf("generated key failed validation: %v", err)
	}
}

func TestGeneratedKeysAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey: %v", err)
		}
		if seen[key] {
			t.Fatal("duplicate key generated")
		}
		seen[key] = true
	}
}

func TestHashAPIKeyDeterministic(t *testing.T) {
	if HashAPIKey("emk_abc") != HashAPIKey("emk_abc") {
		t.Fatal("hash must be deterministic")
	}
	if HashAPIKey("emk_abc") == HashAPIKey("emk_abd") {
		t.Fatal("different keys must hash differently")
	}
	if len(HashAPIKey("anything")) != 64 {
		t.Fatal("hash must be 64 hex chars")
	}
}

func TestValidateAPIKeyFormat(t *testing.T) {
	valid, _ := GenerateAPIKey()

	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"valid", valid, true},
		{"empty", "", false},
		{"wrong prefix", "key_" + strings.Repeat("a", 48), false},
		{"too short", "emk_abcdef", false},
		{"too long", "emk_" + strings.Repeat("a", 50), false},
		{"not hex", "emk_" + strings.Repeat("z", 48), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKeyFormat(tt.key)
			if (err == nil) != tt.ok {
				t.Fatalf("ValidateAPIKeyFormat(%q) = %v, want ok=%v", tt.key, err, tt.ok)
			}
		})
	}
}

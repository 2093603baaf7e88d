package api

import "testing"

func TestNewAssetID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewAssetID()
		if !ValidateAssetID(id) {
			t.Fatalf("generated ID %q fails validation", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestValidateAssetID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"asset_abcDEF123456789012345678", true},
		{"asset_short", false},
		{"policy_abcDEF123456789012345678", false},
		{"asset_abcDEF12345678901234567!", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateAssetID(tt.id); got != tt.valid {
			t.Errorf("ValidateAssetID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

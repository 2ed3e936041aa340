package locator

import "testing"

func TestStableID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"my-id", true},
		{"header", true},
		{"main-nav", true},
		{"submit", true},
		{"12345", false},      // purely numeric
		{"user-123-row", false}, // 3+ consecutive digits
		{"r:123", false},      // React useId
		{":r0:", false},
		{"ng-content-1", false},
		{"react-select-2-input", false},
		{"ember123", false},
		{"a1b2c3d4e5", false}, // hex/hash-like
		{"deadbeef01", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := StableID(tt.id); got != tt.want {
			t.Errorf("StableID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestStableClass(t *testing.T) {
	tests := []struct {
		class string
		want  bool
	}{
		{"btn-primary", true},
		{"container", true},
		{"nav-item", true},
		{"css-1a2b3c", false},  // emotion/MUI hash
		{"sc-abcdef", false},   // styled-components
		{"jss-4f2e1d", false},
		{"col-12345", false},   // 5+ digit run
		{"card-a1b2", false},   // hashed suffix
		{"", false},
	}
	for _, tt := range tests {
		if got := StableClass(tt.class); got != tt.want {
			t.Errorf("StableClass(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

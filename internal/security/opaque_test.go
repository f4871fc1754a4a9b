package security

import "testing"

func TestNewOpaqueToken_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewOpaqueToken()
		if err != nil {
			t.Fatalf("NewOpaqueToken: %v", err)
		}
		if len(tok) != 64 {
			t.Fatalf("token length = %d, want 64 hex chars", len(tok))
		}
		if seen[tok] {
			t.Fatal("NewOpaqueToken produced a duplicate")
		}
		seen[tok] = true
	}
}

func TestTokenEqual(t *testing.T) {
	if !TokenEqual("abc", "abc") {
		t.Error("TokenEqual should match identical values")
	}
	if TokenEqual("abc", "abd") {
		t.Error("TokenEqual should reject different values")
	}
	if TokenEqual("abc", "abcd") {
		t.Error("TokenEqual should reject different lengths")
	}
}

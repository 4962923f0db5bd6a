package otp

import (
	"regexp"
	"testing"
)

func TestGenerateCode_ReturnsSixDigits(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if !re.MatchString(code) {
			t.Errorf("code = %q, want to match ^[0-9]{6}$", code)
		}
	}
}

func TestHashCode_Consistent(t *testing.T) {
	hash1 := HashCode("123456")
	hash2 := HashCode("123456")

	if hash1 != hash2 {
		t.Errorf("HashCode not consistent: hash1 = %q, hash2 = %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
}

func TestHashCode_DifferentInputs(t *testing.T) {
	if HashCode("123456") == HashCode("654321") {
		t.Error("HashCode produced same hash for different inputs")
	}
}

func TestCodeEqual_CorrectMatch(t *testing.T) {
	storedHash := HashCode("123456")
	if !CodeEqual("123456", storedHash) {
		t.Error("CodeEqual should match correct code")
	}
}

func TestCodeEqual_RejectsIncorrect(t *testing.T) {
	storedHash := HashCode("123456")
	if CodeEqual("654321", storedHash) {
		t.Error("CodeEqual should reject wrong code")
	}
}

package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !Verify(hash, "correct horse battery staple") {
		t.Error("Verify() = false for the correct password, want true")
	}
	if Verify(hash, "wrong password") {
		t.Error("Verify() = true for an incorrect password, want false")
	}
}

func TestVerify_EmptyHashNeverMatches(t *testing.T) {
	if Verify("", "anything") {
		t.Error("an empty hash (legacy user) must never verify, regardless of input")
	}
}

func TestIsHashed(t *testing.T) {
	hash, err := Hash("some-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !IsHashed(hash) {
		t.Error("IsHashed() = false for a real bcrypt hash, want true")
	}
	if IsHashed("") {
		t.Error("IsHashed() = true for an empty string, want false")
	}
	if IsHashed("plaintext") {
		t.Error("IsHashed() = true for plaintext, want false")
	}
}

package authn

import "testing"

func TestIssueAndParse_Roundtrip(t *testing.T) {
	issuer := NewIssuer("test-secret")

	tok, err := issuer.Issue("user-1", "space-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, spaceID, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if userID != "user-1" || spaceID != "space-1" {
		t.Errorf("Parse() = (%q, %q), want (%q, %q)", userID, spaceID, "user-1", "space-1")
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	tok, err := NewIssuer("secret-a").Issue("user-1", "space-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, _, err := NewIssuer("secret-b").Parse(tok); err == nil {
		t.Error("expected Parse() to reject a token signed with a different secret")
	}
}

func TestParse_RejectsEmptyToken(t *testing.T) {
	if _, _, err := NewIssuer("secret").Parse(""); err == nil {
		t.Error("expected Parse() to reject an empty token")
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	if _, _, err := NewIssuer("secret").Parse("not-a-jwt"); err == nil {
		t.Error("expected Parse() to reject a malformed token")
	}
}

package crypto

import "testing"

func TestSealOpenToken(t *testing.T) {
	sealed, err := SealToken("cookie-secret", "access-token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == "access-token" {
		t.Fatalf("expected sealed value to differ from plaintext")
	}
	plain, err := OpenToken("cookie-secret", sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "access-token" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestOpenTokenRejectsWrongSecret(t *testing.T) {
	sealed, err := SealToken("cookie-secret", "access-token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := OpenToken("other-secret", sealed); err == nil {
		t.Fatalf("expected decrypt failure with wrong secret")
	}
}

func TestOpenTokenRejectsGarbage(t *testing.T) {
	if _, err := OpenToken("cookie-secret", "!!not-base64!!"); err == nil {
		t.Fatalf("expected decode failure")
	}
	if _, err := DecryptToString("cookie-secret", []byte("x")); err == nil {
		t.Fatalf("expected short payload failure")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "s3cret!"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

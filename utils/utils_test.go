package utils

import (
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Name != "alice" {
		t.Errorf("Name = %q, want alice", claims.Name)
	}
}

func TestExpiredTokenReturnsErrTokenExpired(t *testing.T) {
	token, err := GenerateToken(7, "bob", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token); err != ErrTokenExpired {
		t.Fatalf("ParseToken err = %v, want ErrTokenExpired", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatal("malformed token accepted")
	}
	if _, err := ParseToken(""); err == nil {
		t.Fatal("empty token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken(1, "mallory", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseToken(tampered); err == nil {
		t.Fatal("tampered token accepted")
	}
}

func TestSanitizeStripsScript(t *testing.T) {
	out := Sanitize(`hello <script>alert(1)</script>world`)
	if out != "hello world" {
		t.Errorf("Sanitize = %q, want script stripped", out)
	}
}

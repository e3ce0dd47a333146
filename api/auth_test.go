package api

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestBearerTokenFromStringSuccess(t *testing.T) {
	token, err := bearerTokenFromString("  Bearer header.payload.signature ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header.payload.signature" {
		t.Fatalf("unexpected token content: %s", token)
	}
}

func TestBearerTokenFromStringMissing(t *testing.T) {
	if _, err := bearerTokenFromString(""); err != errMissingAuthorization {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestBearerTokenFromStringMalformed(t *testing.T) {
	for _, header := range []string{
		"Basic abc",
		"Bearer ",
		"Bearer " + strings.Repeat(".", 1000),
		"Bearer onlyonepart",
	} {
		if _, err := bearerTokenFromString(header); err != errBadAuthorization {
			t.Fatalf("%q: expected bad auth header error, got %v", header, err)
		}
	}
}

func TestAuthIssueAndVerify(t *testing.T) {
	auth := NewAuth("test-secret")
	token, err := auth.IssueToken(5 * time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if err := auth.Verify("Bearer " + token); err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if err := NewAuth("other-secret").Verify("Bearer " + token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	auth := NewAuth("test-secret")
	auth.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := auth.IssueToken(time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	auth.now = time.Now
	if err := auth.Verify("Bearer " + token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestAuthRejectsOtherAlgorithmsAndSubjects(t *testing.T) {
	secret := []byte("test-secret")
	auth := NewAuth(string(secret))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": tokenSubject,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := auth.Verify("Bearer " + hs512); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}

	stranger, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "someone-else",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := auth.Verify("Bearer " + stranger); err == nil {
		t.Fatalf("expected foreign subject to be rejected")
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": tokenSubject}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := auth.Verify("Bearer " + noExp); err == nil {
		t.Fatalf("expected token without exp to be rejected")
	}
}

func TestNewAuthPanicsOnEmptySecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewAuth("")
}

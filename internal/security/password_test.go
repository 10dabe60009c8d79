package security

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if strings.Contains(hash, "Passw0rd!") || !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoded hash %q", hash)
	}
	ok, err := VerifyPassword(hash, "Passw0rd!")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification success")
	}
	ok, err = VerifyPassword(hash, "passw0rd!")
	if err != nil {
		t.Fatalf("verify wrong password errored: %v", err)
	}
	if ok {
		t.Fatal("expected password verification failure")
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$!!$a2V5",
	} {
		if _, err := VerifyPassword(encoded, "Passw0rd!"); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{password: "Passw0rd!", ok: true},
		{password: "Abcdefg1", ok: true},
		{password: "Ab1", ok: false},
		{password: "password1", ok: false},
		{password: "Password", ok: false},
		{password: "PASSWORD1", ok: true},
		{password: "Pässwörd", ok: false},
		{password: "Äbcdé1A", ok: false},
		{password: "Äbcdéf1A", ok: true},
	}
	for _, tc := range tests {
		err := CheckPasswordPolicy(tc.password)
		if tc.ok && err != nil {
			t.Fatalf("expected %q to pass, got %v", tc.password, err)
		}
		if !tc.ok && !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected %q to fail with ErrWeakPassword, got %v", tc.password, err)
		}
	}
}

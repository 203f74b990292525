package auth

import (
	"errors"
	"strings"
	"testing"
)

// testHasher keeps argon2 cheap in tests.
var testHasher = Hasher{Time: 1, MemoryKiB: 64, Threads: 1}

func TestHashAndVerify(t *testing.T) {
	encoded, err := testHasher.Hash("s3cret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if strings.Contains(encoded, "s3cret123") {
		t.Fatal("encoded hash contains the raw password")
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=64,t=1,p=1$") {
		t.Errorf("unexpected encoding prefix: %q", encoded)
	}

	ok, err := Verify(encoded, "s3cret123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("expected password to verify")
	}

	ok, err = Verify(encoded, "wrong")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("expected wrong password to fail")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, _ := testHasher.Hash("same")
	b, _ := testHasher.Hash("same")
	if a == b {
		t.Error("expected different encodings for the same password")
	}
}

func TestVerifyMalformed(t *testing.T) {
	tests := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
	}

	for _, encoded := range tests {
		ok, err := Verify(encoded, "anything")
		if ok {
			t.Errorf("Verify(%q) matched", encoded)
		}
		if !errors.Is(err, ErrMalformedHash) {
			t.Errorf("Verify(%q) error = %v, want ErrMalformedHash", encoded, err)
		}
	}
}

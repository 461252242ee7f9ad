package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// Small parameters keep the tests fast; the encoding logic is identical.
func testParams() PasswordParams {
	return PasswordParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Str0ng!Pass", testParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !VerifyPassword("Str0ng!Pass", hash) {
		t.Fatalf("correct password did not verify against its own hash")
	}
	if VerifyPassword("Str0ng!Pass2", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", testParams())
	if err == nil {
		t.Fatalf("expected error for empty password")
	}
	if !errors.Is(err, common.ErrorInvalidInput) {
		t.Fatalf("expected ErrorInvalidInput, got %v", err)
	}
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("Str0ng!Pass", testParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("Str0ng!Pass", testParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if a == b {
		t.Fatalf("two hashes of the same password are identical, salts not random")
	}
	if !VerifyPassword("Str0ng!Pass", a) || !VerifyPassword("Str0ng!Pass", b) {
		t.Fatalf("both hashes must verify the original password")
	}
}

func TestHashPassword_EncodedFormat(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw", testParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash prefix: %q", hash)
	}
}

func TestVerifyPassword_StoredParamsWin(t *testing.T) {
	t.Parallel()

	// Verification re-derives with the parameters embedded in the stored
	// string, so hashes made under older settings keep verifying.
	old := PasswordParams{Time: 1, Memory: 16 * 1024, Threads: 2, KeyLen: 32, SaltLen: 16}
	hash, err := HashPassword("pw", old)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword("pw", hash) {
		t.Fatalf("hash with non-default params did not verify")
	}
}

func TestVerifyPassword_MalformedHashes(t *testing.T) {
	t.Parallel()

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$short",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!",
	}
	for _, h := range malformed {
		if VerifyPassword("pw", h) {
			t.Fatalf("malformed hash %q verified", h)
		}
	}
}

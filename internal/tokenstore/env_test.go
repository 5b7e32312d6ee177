package tokenstore

import (
	"context"
	"testing"

	"github.com/florianilch/tokenward/internal/token"
)

func TestEnvStoreRead(t *testing.T) {
	t.Setenv("TOKENWARD_TEST_TOKEN", `{"access_token":"a","token_type":"Bearer","expires_in":3600,"created_at":1,"expires_at":2}`)

	store, err := NewEnvStore("TOKENWARD_TEST_TOKEN")
	if err != nil {
		t.Fatalf("NewEnvStore failed: %v", err)
	}
	ctx := context.Background()

	out, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if out.AccessToken != "a" || out.ExpiresAt != 2 {
		t.Errorf("unexpected record: %+v", out)
	}

	// Env storage is read-only
	if err := store.Write(ctx, &token.StoredToken{Token: token.Token{AccessToken: "b"}}); err == nil {
		t.Error("Write should fail for env storage")
	}
	if err := store.Delete(ctx); err == nil {
		t.Error("Delete should fail for env storage")
	}
}

func TestNewEnvStoreUnsetVariable(t *testing.T) {
	if _, err := NewEnvStore("TOKENWARD_TEST_UNSET"); err == nil {
		t.Error("NewEnvStore should fail for unset variable")
	}
}

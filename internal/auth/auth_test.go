package auth

import (
	"context"
	"testing"
	"time"

	"edcore.org/internal/access"
)

func withSecret(t *testing.T, value string) {
	t.Helper()
	t.Setenv("EDCORE_AUTH_SECRET", value)
	ResetSecretCache()
	t.Cleanup(ResetSecretCache)
}

func TestGenerateAndParseRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("user-1", access.RoleFaculty, "school-9", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != string(access.RoleFaculty) {
		t.Fatalf("role = %q, want faculty", claims.Role)
	}
	p := claims.Principal()
	if p.ID != "user-1" || p.Role != access.RoleFaculty || p.SchoolID != "school-9" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	withSecret(t, "test-secret")

	if _, err := GenerateToken("", access.RoleStudent, "", time.Hour); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := GenerateToken("user-1", access.RoleStudent, "", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("user-1", access.RoleStudent, "", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseAndValidate(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	withSecret(t, "secret-a")
	token, err := GenerateToken("user-1", access.RoleStudent, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	withSecret(t, "secret-b")
	if _, err := ParseAndValidate(token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	withSecret(t, "test-secret")
	for _, tok := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := ParseAndValidate(tok); err == nil {
			t.Fatalf("expected %q to be rejected", tok)
		}
	}
}

func TestMissingSecret(t *testing.T) {
	withSecret(t, "")
	if _, err := GenerateToken("user-1", access.RoleStudent, "", time.Hour); err == nil {
		t.Fatal("expected error when secret is unset")
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := access.Principal{ID: "user-7", Role: access.RoleCoAdmin, SchoolID: "school-1"}
	ctx := ContextWithPrincipal(context.Background(), p)
	got, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("principal missing from context")
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("unexpected principal on fresh context")
	}
}

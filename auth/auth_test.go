package auth

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{Enabled: true, Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestService_IssueAndVerify(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue("webapp")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Service != "webapp" {
		t.Errorf("Service = %q, want %q", claims.Service, "webapp")
	}
	if claims.Subject != "webapp" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "webapp")
	}
	if claims.Issuer != "voicenotes" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "voicenotes")
	}
}

func TestService_VerifyRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(Config{Enabled: true, Secret: "other-secret"})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	token, err := other.Issue("webapp")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := svc.Verify(token); err == nil {
		t.Error("Verify() should reject a token signed with a different secret")
	}
}

func TestService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)

	now := time.Now()
	claims := &ServiceClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "webapp",
			Issuer:    "voicenotes",
			Audience:  gojwt.ClaimStrings{"transcriber"},
			IssuedAt:  gojwt.NewNumericDate(now.Add(-10 * time.Minute)),
			ExpiresAt: gojwt.NewNumericDate(now.Add(-5 * time.Minute)),
		},
		Service: "webapp",
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := svc.Verify(signed); err == nil {
		t.Error("Verify() should reject an expired token")
	}
}

func TestService_VerifyRejectsWrongAudience(t *testing.T) {
	issuer, err := NewService(Config{Enabled: true, Secret: "test-secret", Audience: "other-service"})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	verifier := newTestService(t)

	token, err := issuer.Issue("webapp")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify() should reject a token with the wrong audience")
	}
}

func TestService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Verify("not.a.token"); err == nil {
		t.Error("Verify() should reject a malformed token")
	}
	if _, err := svc.Verify(""); err == nil {
		t.Error("Verify() should reject an empty token")
	}
}

func TestNewService_RequiresSecretWhenEnabled(t *testing.T) {
	_, err := NewService(Config{Enabled: true})
	if err == nil {
		t.Fatal("NewService() should fail without a secret")
	}
	if !strings.Contains(err.Error(), "secret") {
		t.Errorf("error = %q, want mention of secret", err.Error())
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Issuer != "voicenotes" {
		t.Errorf("Issuer = %q, want %q", cfg.Issuer, "voicenotes")
	}
	if cfg.Audience != "transcriber" {
		t.Errorf("Audience = %q, want %q", cfg.Audience, "transcriber")
	}
	if cfg.TokenTTL != 5*time.Minute {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 5*time.Minute)
	}
}

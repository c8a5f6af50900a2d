// Package auth issues and verifies the short-lived service tokens the web
// app presents when calling the transcriber. Tokens are HMAC-signed JWTs;
// both services share one secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Config configures the service token issuer and verifier.
type Config struct {
	// Enabled turns service-to-service authentication on. When false the
	// transcriber accepts unauthenticated requests.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Secret is the shared HMAC signing key. Required when Enabled.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is the "iss" claim stamped on issued tokens.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Audience is the "aud" claim stamped on issued tokens.
	Audience string `yaml:"audience" mapstructure:"audience"`
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "voicenotes"
	}
	if c.Audience == "" {
		c.Audience = "transcriber"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 5 * time.Minute
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Enabled && c.Secret == "" {
		return errors.New("auth: secret is required when auth is enabled")
	}
	return nil
}

// ServiceClaims are the claims carried by a service token.
type ServiceClaims struct {
	gojwt.RegisteredClaims
	// Service names the calling service.
	Service string `json:"service"`
}

// Service issues and verifies service tokens.
type Service struct {
	cfg Config
}

// NewService creates a Service from cfg.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// Issue creates a signed token identifying the calling service.
func (s *Service) Issue(serviceName string) (string, error) {
	now := time.Now()
	claims := &ServiceClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   serviceName,
			Issuer:    s.cfg.Issuer,
			Audience:  gojwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Service: serviceName,
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, checking signature, expiry,
// issuer, and audience.
func (s *Service) Verify(tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
		gojwt.WithAudience(s.cfg.Audience),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

// ValidatorFunc bridges the typed service with middleware that does not know
// the claims type.
func (s *Service) ValidatorFunc() func(string) (any, error) {
	return func(token string) (any, error) {
		return s.Verify(token)
	}
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("auth: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

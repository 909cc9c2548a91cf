package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the algorithm session tokens are signed with.
type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
)

var (
	ErrMissingKID  = errors.New("missing kid")
	ErrUnknownKID  = errors.New("unknown kid")
	ErrFutureIAT   = errors.New("token iat too far in the future")
	ErrNoSessionID = errors.New("token has no session id")
	ErrNoSignKey   = errors.New("verifier has no signing key")
)

// Config configures a [Verifier]. For HS256 Secret is both the signing and
// the verification key; for Ed25519 PublicKey or VerifyKeys verify and the
// optional PrivateKey signs.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
	// KeyID is stamped on signed tokens and, without VerifyKeys, required
	// on verified ones.
	KeyID string
	// VerifyKeys maps kid to a verification key for rotation.
	VerifyKeys map[string][]byte
}

// SessionClaims is the payload of a tokenized session. Subject is the
// identity id.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks session tokens. It is immutable and safe for concurrent
// use.
type Verifier struct {
	config Config
}

// NewVerifier validates cfg and returns a verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) < 32 && len(cfg.VerifyKeys) == 0 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Verifier{config: cfg}, nil
}

// Sign issues a token for claims valid for ttl. It is used by tests and
// development setups; production tokens come from the provider.
func (v *Verifier) Sign(claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.Issuer == "" {
		claims.Issuer = v.config.Issuer
	}
	if len(claims.Audience) == 0 && v.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.config.Audience}
	}

	token := jwt.NewWithClaims(v.method(), claims)
	if v.config.KeyID != "" {
		token.Header["kid"] = v.config.KeyID
	}

	key, err := v.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(key)
}

// Verify parses tokenStr and returns its claims.
func (v *Verifier) Verify(tokenStr string) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.config.Leeway))
	}
	if v.config.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		options = append(options, jwt.WithAudience(v.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}

		if len(v.config.VerifyKeys) > 0 {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, ErrMissingKID
			}
			key, ok := v.config.VerifyKeys[kid]
			if !ok {
				return nil, ErrUnknownKID
			}
			return v.verifyKeyFromBytes(key)
		}

		if v.config.KeyID != "" {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, ErrMissingKID
			}
			if kid != v.config.KeyID {
				return nil, ErrUnknownKID
			}
		}

		return v.verifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt != nil && v.config.MaxFutureIAT > 0 {
		if claims.IssuedAt.Time.After(time.Now().Add(v.config.MaxFutureIAT)) {
			return nil, ErrFutureIAT
		}
	}
	if claims.SessionID == "" {
		return nil, ErrNoSessionID
	}

	return claims, nil
}

func (v *Verifier) method() jwt.SigningMethod {
	if v.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (v *Verifier) signKey() (interface{}, error) {
	if v.config.SigningMethod == MethodHS256 {
		if len(v.config.Secret) == 0 {
			return nil, ErrNoSignKey
		}
		return v.config.Secret, nil
	}
	if len(v.config.PrivateKey) == 0 {
		return nil, ErrNoSignKey
	}
	return parseEdPrivateKey(v.config.PrivateKey)
}

func (v *Verifier) verifyKey() (interface{}, error) {
	if v.config.SigningMethod == MethodHS256 {
		return v.config.Secret, nil
	}
	return parseEdPublicKey(v.config.PublicKey)
}

func (v *Verifier) verifyKeyFromBytes(key []byte) (interface{}, error) {
	if v.config.SigningMethod == MethodHS256 {
		return key, nil
	}
	return parseEdPublicKey(key)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/config"
)

var validRoles = map[string]struct{}{"patient": {}, "nutritionist": {}, "admin": {}}

type Config struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

func FromCentralConfig(c config.JWTConfig) Config {
	return Config{
		Secret:    c.Secret,
		Issuer:    c.Issuer,
		Audience:  c.Audience,
		AccessTTL: time.Duration(c.AccessTTLMinutes) * time.Minute,
	}
}

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	cfg    Config
	key    []byte
	parser *jwt.Parser
}

func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 8 {
		return nil, ErrConfig{Msg: "secret must be at least 8 bytes"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Manager{cfg: cfg, key: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

func NewFromCentral(cfg *config.Config) (*Manager, error) {
	return New(FromCentralConfig(cfg.Authentication.JWT))
}

// IssueAccess signs a token for userID. Issuance normally happens in the
// identity service; this is used by seeding and tests.
func (m *Manager) IssueAccess(userID uuid.UUID, role string) (string, error) {
	if _, ok := validRoles[role]; !ok {
		return "", ErrConfig{Msg: "unknown role " + role}
	}
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	if m.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken{Err: errors.New("subject is not a user id")}
	}
	if _, ok := validRoles[claims.Role]; !ok {
		return nil, ErrInvalidToken{Err: errors.New("unknown role " + claims.Role)}
	}
	claims.userID = uid
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zezinho10632/DouglasApi/pkg/config"
)

// ErrInvalidToken is returned for any token that fails parsing or validation
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried by a bearer token
type Claims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JobTitle string `json:"jobTitle,omitempty"`
}

// Tokens signs and verifies HS256 bearer tokens
// ⭐ SSOT: JWT handling lives here only
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token codec from config
func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a token for the given claims
func (t *Tokens) Issue(c Claims) (string, error) {
	if c.UserID == "" {
		return "", fmt.Errorf("issue token: subject is required")
	}

	now := t.now()
	claims := jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"name":  c.Name,
		"role":  c.Role,
		"iss":   t.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	if c.JobTitle != "" {
		claims["jobTitle"] = c.JobTitle
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token string and returns its claims
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	c := &Claims{UserID: sub}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	c.Role, _ = mc["role"].(string)
	c.JobTitle, _ = mc["jobTitle"].(string)
	return c, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

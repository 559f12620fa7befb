package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionHeader     = "X-Session-Token"
	sessionContextKey = "session"
	sessionIssuer     = "calendarbot"
)

var ErrNoSession = errors.New("no session in context")

// TokenData is what a session token carries. Sub is the opaque session key
// that scopes chat history.
type TokenData struct {
	Sub string
	New bool
}

type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), ttl: ttl}
}

// NewSessionID mints a fresh opaque session key.
func NewSessionID() string {
	return uuid.NewString()
}

func (s *SessionSigner) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionSigner) Parse(raw string) (*TokenData, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("session token has no subject")
	}
	return &TokenData{Sub: claims.Subject}, nil
}

// SessionMiddleware resolves the caller's session from the X-Session-Token
// header. A request without a token gets a new session and the signed token
// is echoed back in the response header. A token that fails to parse is
// handed to onError.
func SessionMiddleware(signer *SessionSigner, onError func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(SessionHeader)
			if raw == "" {
				data := &TokenData{Sub: NewSessionID(), New: true}
				token, err := signer.Issue(data.Sub)
				if err != nil {
					return fmt.Errorf("issue session token: %w", err)
				}
				c.Response().Header().Set(SessionHeader, token)
				c.Set(sessionContextKey, data)
				return next(c)
			}

			data, err := signer.Parse(raw)
			if err != nil {
				return onError(c, err)
			}
			c.Set(sessionContextKey, data)
			return next(c)
		}
	}
}

func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(sessionContextKey).(*TokenData)
	if !ok || data == nil {
		return nil, ErrNoSession
	}
	return data, nil
}

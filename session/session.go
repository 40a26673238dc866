// Package session manages authenticated sessions and the request-scoped
// identity binding.
//
// Two strategies are provided:
//
//   - Database: sessions stored in the datastore, fully revocable
//   - JWT (HS256): stateless tokens, no server storage
//
// The identity attached to a request travels in its context.Context via
// WithIdentity/FromContext; there is no process-wide current user.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session represents an authenticated session.
type Session struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identity_id"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	IssuedAt   time.Time `json:"issued_at"`
	Active     bool      `json:"active"`
}

// Strategy defines the interface for session creation and validation.
type Strategy interface {
	Create(identityID string) (*Session, error)
	Validate(token string) (*Session, error)
	Delete(token string) error
}

// Storage is the datastore boundary for database-backed sessions.
type Storage interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	DeleteSession(id string) error
}

// DatabaseStrategy stores sessions in the datastore; deleting the row
// revokes the session immediately.
type DatabaseStrategy struct {
	repo Storage
	ttl  time.Duration
}

func NewDatabaseStrategy(repo Storage, ttl time.Duration) *DatabaseStrategy {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &DatabaseStrategy{repo: repo, ttl: ttl}
}

func (s *DatabaseStrategy) Create(identityID string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:         uuid.New().String(),
		IdentityID: identityID,
		ExpiresAt:  now.Add(s.ttl),
		IssuedAt:   now,
		Active:     true,
	}
	sess.Token = sess.ID

	if err := s.repo.CreateSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *DatabaseStrategy) Validate(token string) (*Session, error) {
	sess, err := s.repo.GetSession(token)
	if err != nil {
		return nil, err
	}
	if !sess.Active || sess.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("session expired or inactive")
	}
	return sess, nil
}

func (s *DatabaseStrategy) Delete(token string) error {
	return s.repo.DeleteSession(token)
}

// JWTStrategy implements stateless sessions with signed tokens.
type JWTStrategy struct {
	method jwt.SigningMethod
	secret []byte
	expiry time.Duration
}

// NewHS256Strategy creates an HMAC-SHA256 JWT strategy.
func NewHS256Strategy(secret string, expiry time.Duration) *JWTStrategy {
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &JWTStrategy{
		method: jwt.SigningMethodHS256,
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Claims represents the data stored in the JWT.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *JWTStrategy) Create(identityID string) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)
	sid := uuid.New().String()

	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         sid,
		IdentityID: identityID,
		Token:      token,
		ExpiresAt:  expiresAt,
		IssuedAt:   now,
		Active:     true,
	}, nil
}

func (s *JWTStrategy) Validate(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &Session{
		ID:         claims.SessionID,
		IdentityID: claims.Subject,
		Token:      tokenString,
		ExpiresAt:  claims.ExpiresAt.Time,
		IssuedAt:   claims.IssuedAt.Time,
		Active:     true,
	}, nil
}

func (s *JWTStrategy) Delete(token string) error {
	// Stateless, nothing to delete on the server side.
	return nil
}

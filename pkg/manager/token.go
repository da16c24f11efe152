package manager

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for unknown tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens past their expiry
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager maps API bearer tokens to the operator principal. It holds
// one optional static token from configuration plus any number of
// generated, expiring tokens.
type TokenManager struct {
	operator types.Principal
	static   []byte
	tokens   map[string]*OperatorToken
	mu       sync.RWMutex
	now      func() time.Time
}

// OperatorToken represents a generated token. ID names the token in
// listings and revocations; Token is the secret and is only returned once.
type OperatorToken struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewTokenManager creates a new token manager for operator
func NewTokenManager(operator types.Principal) *TokenManager {
	return &TokenManager{
		operator: operator,
		tokens:   make(map[string]*OperatorToken),
		now:      time.Now,
	}
}

// Operator returns the principal tokens resolve to
func (tm *TokenManager) Operator() types.Principal {
	return tm.operator
}

// SetStaticToken installs a non-expiring token
func (tm *TokenManager) SetStaticToken(token string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.static = []byte(token)
}

// GenerateToken generates a new operator token valid for duration
func (tm *TokenManager) GenerateToken(duration time.Duration) (*OperatorToken, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	// Generate a random token
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}

	now := tm.now()
	ot := &OperatorToken{
		ID:        uuid.New().String(),
		Token:     hex.EncodeToString(bytes),
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	tm.mu.Lock()
	tm.tokens[ot.Token] = ot
	tm.mu.Unlock()

	return ot, nil
}

// Authenticate returns the operator principal for a valid token
func (tm *TokenManager) Authenticate(token string) (types.Principal, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if len(tm.static) > 0 && subtle.ConstantTimeCompare(tm.static, []byte(token)) == 1 {
		return tm.operator, nil
	}

	ot, exists := tm.tokens[token]
	if !exists {
		return "", ErrInvalidToken
	}

	if tm.now().After(ot.ExpiresAt) {
		return "", ErrTokenExpired
	}

	return tm.operator, nil
}

// RevokeToken revokes the generated token with the given ID. It reports
// whether such a token existed.
func (tm *TokenManager) RevokeToken(id string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for token, ot := range tm.tokens {
		if ot.ID == id {
			delete(tm.tokens, token)
			return true
		}
	}
	return false
}

// CleanupExpiredTokens removes expired tokens and returns how many it removed
func (tm *TokenManager) CleanupExpiredTokens() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.now()
	removed := 0
	for token, ot := range tm.tokens {
		if now.After(ot.ExpiresAt) {
			delete(tm.tokens, token)
			removed++
		}
	}
	return removed
}

// ListTokens returns the generated tokens, oldest first, without their
// secrets
func (tm *TokenManager) ListTokens() []*OperatorToken {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tokens := make([]*OperatorToken, 0, len(tm.tokens))
	for _, ot := range tm.tokens {
		tokens = append(tokens, &OperatorToken{
			ID:        ot.ID,
			CreatedAt: ot.CreatedAt,
			ExpiresAt: ot.ExpiresAt,
		})
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].ID < tokens[j].ID
		}
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})

	return tokens
}

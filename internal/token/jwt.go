package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dkovalev/deskflow-server/internal/model"
)

// Claims represents JWT claims carried by every token kind this server
// signs. TokenType discriminates access, refresh and link tokens so one
// kind can never be presented as another.
type Claims struct {
	jwt.RegisteredClaims
	UserID          uuid.UUID `json:"user_id"`
	Role            string    `json:"role,omitempty"`
	SessionID       uuid.UUID `json:"session_id,omitempty"`
	RotationCounter int64     `json:"rotation_counter,omitempty"`
	TokenType       string    `json:"typ"`
}

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
	typeLink    = "link"
)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWT creates a new JWT token manager. Zero TTLs fall back to the
// defaults.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration) *JWT {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GenerateAccessToken creates a short-lived self-contained access token.
func (j *JWT) GenerateAccessToken(subjectID uuid.UUID, role model.Role, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID:    subjectID,
		Role:      string(role),
		SessionID: sessionID,
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token bound to a
// session and its current rotation counter.
func (j *JWT) GenerateRefreshToken(subjectID uuid.UUID, sessionID uuid.UUID, rotationCounter int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		UserID:          subjectID,
		SessionID:       sessionID,
		RotationCounter: rotationCounter,
		TokenType:       typeRefresh,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// GenerateLinkIntent creates a minutes-scale single-use token that
// survives the OAuth redirect and returns its JTI for consumption
// tracking.
func (j *JWT) GenerateLinkIntent(subjectID uuid.UUID) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(model.LinkIntentTTL)),
		},
		UserID:    subjectID,
		TokenType: typeLink,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign link intent: %w", err)
	}

	return tokenString, jti, nil
}

// ParseAccessToken validates an access token and builds the request
// Principal from its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.Principal, error) {
	claims, err := j.parse(tokenString, typeAccess)
	if err != nil {
		return model.Principal{}, err
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Principal{}, model.ErrTokenMalformed
	}

	return model.Principal{
		SubjectID: claims.UserID,
		Role:      role,
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ParseRefreshToken validates a refresh token and extracts its session
// binding.
func (j *JWT) ParseRefreshToken(tokenString string) (model.RefreshClaims, error) {
	claims, err := j.parse(tokenString, typeRefresh)
	if err != nil {
		return model.RefreshClaims{}, err
	}

	return model.RefreshClaims{
		SubjectID:       claims.UserID,
		SessionID:       claims.SessionID,
		RotationCounter: claims.RotationCounter,
		ExpiresAt:       claims.ExpiresAt.Time,
	}, nil
}

// ParseLinkIntent validates a link intent token signature and expiry.
// Consumption state is the caller's concern.
func (j *JWT) ParseLinkIntent(tokenString string) (model.LinkIntent, error) {
	claims, err := j.parse(tokenString, typeLink)
	if err != nil {
		return model.LinkIntent{}, err
	}

	return model.LinkIntent{
		JTI:          claims.ID,
		ReturnUserID: claims.UserID,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

func (j *JWT) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, model.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, model.ErrTokenInvalid
		default:
			return nil, model.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, model.ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return nil, model.ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, model.ErrTokenMalformed
	}
	return claims, nil
}

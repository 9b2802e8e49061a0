package auth

import (
	"fmt"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

// sessionTokenClaims - токен сессии от провайдера авторизации
type sessionTokenClaims struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Picture     string `json:"picture"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey []byte
}

func NewJWTManager(secretKey string) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
	}
}

// GenerateSessionToken выпускает токен сессии, нужен для dev-окружения и тестов
func (m *JWTManager) GenerateSessionToken(claims entity.SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionTokenClaims{
		Name:        claims.Name,
		Email:       claims.Email,
		Picture:     claims.Picture,
		WorkspaceID: claims.WorkspaceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken проверяет подпись и срок токена и возвращает пользователя сессии
func (m *JWTManager) ValidateSessionToken(tokenString string) (*entity.SessionClaims, error) {
	claims := &sessionTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid subject in token")
	}

	return &entity.SessionClaims{
		UserID:      claims.Subject,
		Name:        claims.Name,
		Email:       claims.Email,
		Picture:     claims.Picture,
		WorkspaceID: claims.WorkspaceID,
	}, nil
}

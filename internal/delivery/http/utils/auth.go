package utils

import (
	"errors"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

type jwtLoginClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthManager struct {
	jwtSecretKey  []byte
	userRepo      repo.User
	tokenLifetime time.Duration
}

func NewAuthManager(jwtSecretKey []byte, userRepo repo.User, tokenLifetime time.Duration) *AuthManager {
	return &AuthManager{
		jwtSecretKey:  jwtSecretKey,
		userRepo:      userRepo,
		tokenLifetime: tokenLifetime,
	}
}

// CheckAuth проверяет токен и возвращает ID пользователя, если токен валиден.
// Если токен невалиден, то возвращается ErrUnauthorized.
func (a *AuthManager) CheckAuth(tokenString string) (string, error) {
	claims := jwtLoginClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecretKey, nil
	})
	if err != nil {
		return "", ErrUnauthorized
	}
	if !token.Valid {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}

// CheckAuthFromContext проверяет сессионную куку и возвращает ID пользователя.
func (a *AuthManager) CheckAuthFromContext(c echo.Context) (string, error) {
	cookie, err := c.Cookie("session")
	if err != nil {
		return "", ErrUnauthorized
	}
	return a.CheckAuth(cookie.Value)
}

// RequireUser проверяет сессию и уровень доступа пользователя. Уровень
// читается из базы при каждом запросе: отзыв прав действует немедленно.
func (a *AuthManager) RequireUser(c echo.Context, minPermissionLevel int) (*entity.DashboardUser, error) {
	userID, err := a.CheckAuthFromContext(c)
	if err != nil {
		return nil, err
	}
	user, err := a.userRepo.GetUser(userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Join(ErrInternal, err)
	}
	if user.PermissionLevel < minPermissionLevel {
		return nil, ErrForbidden
	}
	return user, nil
}

// CreateToken создает сессионный токен для пользователя
func (a *AuthManager) CreateToken(userID string, username string) (string, error) {
	claims := jwtLoginClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecretKey)
}

func (a *AuthManager) TokenLifetime() time.Duration {
	return a.tokenLifetime
}

package http

import (
	"net/http"
	"time"

	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type User struct {
	userUseCase    usecase.User
	authManager    *utils.AuthManager
	cookiesManager *utils.CookieManager
	discordOAuth   *utils.DiscordOAuth
}

func NewUser(userUseCase usecase.User, authManager *utils.AuthManager, cookiesManager *utils.CookieManager, discordOAuth *utils.DiscordOAuth) *User {
	return &User{
		userUseCase:    userUseCase,
		authManager:    authManager,
		cookiesManager: cookiesManager,
		discordOAuth:   discordOAuth,
	}
}

func (u *User) Configure(oauthGroup *echo.Group, sessionGroup *echo.Group) {
	oauthGroup.GET("/discord/login", u.DiscordLogin)
	oauthGroup.GET("/discord/callback", u.DiscordCallback)
	sessionGroup.GET("", u.GetSession)
	sessionGroup.POST("/logout", u.Logout)
}

// DiscordLogin перенаправляет пользователя на страницу авторизации Discord.
func (u *User) DiscordLogin(c echo.Context) error {
	state := uuid.New().String()
	c.SetCookie(u.cookiesManager.NewOAuthStateCookie(state))
	return c.Redirect(http.StatusTemporaryRedirect, u.discordOAuth.GetAuthURL(state))
}

// DiscordCallback обменивает код авторизации на сессию дашборда.
func (u *User) DiscordCallback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("OAuth state mismatch", "invalid_oauth_state"))
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Missing authorization code", "missing_code"))
	}

	ctx := c.Request().Context()
	token, err := u.discordOAuth.Exchange(ctx, code)
	if err != nil {
		c.Logger().Errorf("oauth exchange failed: %v", err)
		return c.JSON(http.StatusBadGateway, utils.NewAPIErrorResponse("OAuth exchange failed", "oauth_exchange_failed"))
	}
	identity, err := u.discordOAuth.FetchIdentity(ctx, token)
	if err != nil {
		c.Logger().Errorf("identity fetch failed: %v", err)
		return c.JSON(http.StatusBadGateway, utils.NewAPIErrorResponse("Failed to fetch identity", "identity_fetch_failed"))
	}

	user, err := u.userUseCase.LoginUser(identity.ID, identity.Username)
	if err != nil {
		c.Logger().Errorf("login failed for %s: %v", identity.ID, err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
	}

	sessionToken, err := u.authManager.CreateToken(user.UserID, user.Username)
	if err != nil {
		c.Logger().Errorf("failed to create session token: %v", err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
	}
	c.SetCookie(u.cookiesManager.NewSessionCookie(sessionToken, time.Now().Add(u.authManager.TokenLifetime())))
	return c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
}

// GetSession возвращает профиль текущего пользователя.
func (u *User) GetSession(c echo.Context) error {
	user, err := u.authManager.RequireUser(c, entity.PermissionUpload)
	if err != nil {
		return authErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

func (u *User) Logout(c echo.Context) error {
	c.SetCookie(u.cookiesManager.ClearSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

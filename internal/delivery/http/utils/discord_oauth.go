package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// DiscordOAuth представляет конфигурацию OAuth для работы с Discord
type DiscordOAuth struct {
	config *oauth2.Config
}

// DiscordIdentity — профиль пользователя, выданный Discord API
type DiscordIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewDiscordOAuth создает новый экземпляр DiscordOAuth
func NewDiscordOAuth(clientID, clientSecret, redirectURL string) *DiscordOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://discord.com/oauth2/authorize",
			TokenURL: "https://discord.com/api/oauth2/token",
		},
		Scopes: []string{"identify"},
	}
	return &DiscordOAuth{config: config}
}

// GetAuthURL возвращает URL для авторизации через Discord
func (d *DiscordOAuth) GetAuthURL(state string) string {
	return d.config.AuthCodeURL(state)
}

// Exchange обменивает код авторизации на токен
func (d *DiscordOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return d.config.Exchange(ctx, code)
}

// FetchIdentity запрашивает профиль авторизовавшегося пользователя
func (d *DiscordOAuth) FetchIdentity(ctx context.Context, token *oauth2.Token) (*DiscordIdentity, error) {
	client := d.config.Client(ctx, token)
	resp, err := client.Get("https://discord.com/api/users/@me")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity request failed with status %d", resp.StatusCode)
	}

	identity := &DiscordIdentity{}
	if err := json.NewDecoder(resp.Body).Decode(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

package client

import (
	"context"
	"net/http"
)

// LoginResult is returned by Login. When TwoFactorRequired is set, finish with
// VerifyTwoFactor using SessionToken.
type LoginResult struct {
	TwoFactorRequired bool
	SessionToken      string
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	SessionToken string `json:"session_token"`
}

func (c *Client) Register(ctx context.Context, email, login, password string) (string, error) {
	body := map[string]string{"email": email, "login": login, "password": password}
	var env struct {
		Data struct {
			UserID string `json:"user_id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &env); err != nil {
		return "", err
	}
	return env.Data.UserID, nil
}

// Login stores the access token for later calls unless a second factor is needed.
func (c *Client) Login(ctx context.Context, emailOrLogin, password string) (LoginResult, error) {
	body := map[string]string{"email_or_login": emailOrLogin, "password": password}
	var env struct {
		Data tokenData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &env); err != nil {
		return LoginResult{}, err
	}
	if env.Data.AccessToken == "" {
		return LoginResult{TwoFactorRequired: true, SessionToken: env.Data.SessionToken}, nil
	}
	c.login(env.Data.AccessToken)
	return LoginResult{}, nil
}

func (c *Client) VerifyTwoFactor(ctx context.Context, sessionToken, code string) error {
	body := map[string]string{"session_token": sessionToken, "code": code}
	var env struct {
		Data tokenData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/2fa/verify", body, &env); err != nil {
		return err
	}
	c.login(env.Data.AccessToken)
	return nil
}

// login switches identity, so nothing cached for the previous one may leak.
func (c *Client) login(token string) {
	c.SetToken(token)
	c.purge()
}

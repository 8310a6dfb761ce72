package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// ErrMissingUserID means the backend accepted the login but sent no id.
var ErrMissingUserID = errors.New("login response carried no user id")

// Login relays credentials and normalizes the id/user_id variants.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "/login", nil, "", body, &raw); err != nil {
		return nil, err
	}

	result := &models.LoginResult{
		UserID: anyString(raw, "id", "user_id"),
		Name:   anyString(raw, "name"),
		Token:  anyString(raw, "token", "access_token"),
	}
	if result.UserID == "" {
		return nil, ErrMissingUserID
	}
	return result, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, input models.RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/register", nil, "", input, nil)
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sandeepkv93/tasktag/internal/model"
)

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (string, error) {
	_, msg, err := do[*model.User](ctx, c, http.MethodPost, "/api/auth/register", false, in)
	return msg, err
}

func (c *Client) Login(ctx context.Context, in LoginRequest) (LoginResponse, error) {
	out, _, err := do[LoginResponse](ctx, c, http.MethodPost, "/api/auth/login", false, in)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, _, err := do[json.RawMessage](ctx, c, http.MethodPost, "/api/auth/logout", true, nil)
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	out, _, err := do[*model.User](ctx, c, http.MethodGet, "/api/auth/user", true, nil)
	if err != nil {
		return model.User{}, err
	}
	if out == nil {
		return model.User{}, &APIError{Status: http.StatusOK, Message: "no user in response"}
	}
	return *out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, id int64, hash string) (string, error) {
	path := fmt.Sprintf("/api/email/verify/%d/%s", id, url.PathEscape(hash))
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodGet, path, false, nil)
	return msg, err
}

func (c *Client) ResendVerification(ctx context.Context) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/api/email/resend", true, nil)
	return msg, err
}

func (c *Client) ForgotPassword(ctx context.Context, in ForgotPasswordRequest) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/api/auth/forgot-password", false, in)
	return msg, err
}

func (c *Client) ResetPassword(ctx context.Context, in ResetPasswordRequest) (string, error) {
	_, msg, err := do[json.RawMessage](ctx, c, http.MethodPost, "/api/auth/reset-password", false, in)
	return msg, err
}

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	out, _, err := do[[]model.Tag](ctx, c, http.MethodGet, "/api/tags", true, nil)
	if out == nil && err == nil {
		out = []model.Tag{}
	}
	return out, err
}

func (c *Client) GetTag(ctx context.Context, id int64) (model.Tag, error) {
	out, _, err := do[model.Tag](ctx, c, http.MethodGet, fmt.Sprintf("/api/tags/%d", id), true, nil)
	return out, err
}

func (c *Client) CreateTag(ctx context.Context, in model.TagInput) (model.Tag, error) {
	out, _, err := do[model.Tag](ctx, c, http.MethodPost, "/api/tags", true, in)
	return out, err
}

func (c *Client) UpdateTag(ctx context.Context, id int64, in model.TagInput) (model.Tag, error) {
	out, _, err := do[model.Tag](ctx, c, http.MethodPut, fmt.Sprintf("/api/tags/%d", id), true, in)
	return out, err
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	_, _, err := do[json.RawMessage](ctx, c, http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), true, nil)
	return err
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	out, _, err := do[[]model.Task](ctx, c, http.MethodGet, "/api/tasks", true, nil)
	if out == nil && err == nil {
		out = []model.Task{}
	}
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id int64) (model.Task, error) {
	out, _, err := do[model.Task](ctx, c, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), true, nil)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	out, _, err := do[model.Task](ctx, c, http.MethodPost, "/api/tasks", true, in)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in model.TaskInput) (model.Task, error) {
	out, _, err := do[model.Task](ctx, c, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), true, in)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, _, err := do[json.RawMessage](ctx, c, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), true, nil)
	return err
}

// SetTaskCompleted flips a task between completed and pending, resending
// its other fields unchanged.
func (c *Client) SetTaskCompleted(ctx context.Context, task model.Task, completed bool) (model.Task, error) {
	status := model.StatusPending
	if completed {
		status = model.StatusCompleted
	}
	return c.UpdateTask(ctx, task.ID, task.WithStatus(status).Input())
}

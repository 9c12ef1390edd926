package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// LoginRequest is the body of the basic name/email login.  The backend
// creates the user on first login.
type LoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// LoginResult is the normalized outcome of either login endpoint.
type LoginResult struct {
	Identity model.Identity
	Email    string
	Phone    string
	IsNew    bool
}

// Login calls POST /api/auth/login/.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" {
		return LoginResult{}, &ValidationError{Field: "name,email", Message: "이름과 이메일을 입력해주세요."}
	}
	var body json.RawMessage
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login/", nil, req, &body, "로그인 실패"); err != nil {
		return LoginResult{}, err
	}
	return loginResult("login", body)
}

// AdminLogin calls POST /api/admin/login/.  Only accounts with the admin
// role are accepted by the backend.
func (c *Client) AdminLogin(ctx context.Context, email string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LoginResult{}, &ValidationError{Field: "email", Message: "이메일을 입력하세요."}
	}
	var body json.RawMessage
	err := c.do(ctx, "admin login", http.MethodPost, "/api/admin/login/", nil,
		map[string]string{"email": email}, &body, "로그인에 실패했습니다.")
	if err != nil {
		return LoginResult{}, err
	}
	res, err := loginResult("admin login", body)
	if err != nil {
		return LoginResult{}, err
	}
	if res.Email == "" {
		res.Email = email
	}
	return res, nil
}

// UserInfo resolves the identity behind the client's bearer token via
// GET /api/users/userinfo/.
func (c *Client) UserInfo(ctx context.Context) (model.Identity, error) {
	if c.token == "" {
		return model.Identity{}, &ValidationError{Field: "token", Message: "로그인이 필요합니다."}
	}
	var body json.RawMessage
	if err := c.do(ctx, "userinfo", http.MethodGet, "/api/users/userinfo/", nil, nil, &body, "사용자 정보를 불러오지 못했습니다."); err != nil {
		return model.Identity{}, err
	}
	_, id, ok := decodeIdentity(body)
	if !ok {
		return model.Identity{}, &RejectionError{Op: "userinfo", Status: http.StatusOK, Message: msgBadPayload}
	}
	return id, nil
}

func loginResult(op string, body json.RawMessage) (LoginResult, error) {
	raw, id, ok := decodeIdentity(body)
	if !ok {
		return LoginResult{}, &RejectionError{Op: op, Status: http.StatusOK, Message: msgBadPayload}
	}
	isNew, _ := raw["is_new"].(bool)
	return LoginResult{
		Identity: id,
		Email:    asString(raw["email"]),
		Phone:    asString(raw["phone"]),
		IsNew:    isNew,
	}, nil
}

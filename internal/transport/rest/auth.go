package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

const (
	pathRequestOTP = "/api/auth/admin/request-otp"
	pathVerifyOTP  = "/api/auth/admin/verify-otp"
	pathMe         = "/api/auth/me"
)

type otpRequest struct {
	Email string `json:"email"`
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type identityDTO struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	AdminRole   string   `json:"admin_role"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type otpVerifyResponse struct {
	AccessToken string      `json:"access_token"`
	Token       string      `json:"token"`
	User        identityDTO `json:"user"`
}

func (d identityDTO) toDomain() domain.AdminIdentity {
	roleName := d.AdminRole
	if roleName == "" {
		roleName = d.Role
	}
	role, _ := domain.ParseRole(roleName)

	permissions := domain.NewPermissionSet()
	for _, p := range d.Permissions {
		if p = strings.TrimSpace(p); p != "" {
			permissions[domain.PermissionID(p)] = struct{}{}
		}
	}
	return domain.AdminIdentity{
		ID:          d.ID,
		DisplayName: d.FullName,
		Email:       d.Email,
		Role:        role,
		Permissions: permissions,
	}
}

// RequestOTP asks the backend to deliver a one-time code to the operator email.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	return c.do(ctx, call{
		op:       "request otp",
		method:   http.MethodPost,
		path:     pathRequestOTP,
		endpoint: pathRequestOTP,
		body:     otpRequest{Email: email},
		auth:     anonymous,
	})
}

// VerifyOTP exchanges a code for a session token and the operator identity.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (string, domain.AdminIdentity, error) {
	var out otpVerifyResponse
	err := c.do(ctx, call{
		op:       "verify otp",
		method:   http.MethodPost,
		path:     pathVerifyOTP,
		endpoint: pathVerifyOTP,
		body:     otpVerifyRequest{Email: email, OTP: code},
		auth:     anonymous,
		out:      &out,
	})
	if err != nil {
		return "", domain.AdminIdentity{}, err
	}

	token := out.AccessToken
	if token == "" {
		token = out.Token
	}
	if token == "" {
		return "", domain.AdminIdentity{}, domain.NewError(domain.KindServer, "verify otp", "server did not return a session token", nil)
	}
	return token, out.User.toDomain(), nil
}

// VerifyIdentity resolves the identity behind an explicit token. A rejection is returned
// to the caller and never reported to the bound session.
func (c *Client) VerifyIdentity(ctx context.Context, token string) (domain.AdminIdentity, error) {
	var out identityDTO
	err := c.do(ctx, call{
		op:       "verify identity",
		method:   http.MethodGet,
		path:     pathMe,
		endpoint: pathMe,
		auth:     explicitBearer,
		token:    token,
		out:      &out,
	})
	if err != nil {
		return domain.AdminIdentity{}, err
	}
	return out.toDomain(), nil
}

var _ port.AuthGateway = (*Client)(nil)

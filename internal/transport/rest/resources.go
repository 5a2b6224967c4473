package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// resourcePaths maps collections onto the admin API.
var resourcePaths = map[domain.ResourceKind]string{
	domain.ResourceUsers:       "/api/admin/users",
	domain.ResourceKYC:         "/api/admin/kyc",
	domain.ResourceServices:    "/api/admin/services",
	domain.ResourceMentorship:  "/api/admin/mentors",
	domain.ResourceInvestments: "/api/admin/pitches",
}

func resourcePath(kind domain.ResourceKind) (string, error) {
	path, ok := resourcePaths[kind]
	if !ok {
		return "", domain.ValidationError("resource path", fmt.Sprintf("unknown resource %q", kind))
	}
	return path, nil
}

type listParams struct {
	Search string `url:"search,omitempty"`
	Status string `url:"status,omitempty"`
	Page   int    `url:"page"`
	Limit  int    `url:"limit"`
}

// EncodeQuery renders a resource query as list parameters. Secondary filters follow the
// fixed parameters in key order.
func EncodeQuery(q domain.ResourceQuery) (url.Values, error) {
	values, err := query.Values(listParams{
		Search: q.SearchText,
		Status: q.StatusFilter,
		Page:   q.Page,
		Limit:  q.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	for _, key := range q.SecondaryKeys() {
		if _, reserved := values[key]; reserved {
			continue
		}
		values.Set(key, q.SecondaryFilters[key])
	}
	return values, nil
}

type listResponse[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

// Lister fetches pages of one collection with items decoded as T.
type Lister[T any] struct {
	client *Client
}

// NewLister returns a typed lister backed by the client.
func NewLister[T any](client *Client) *Lister[T] {
	return &Lister[T]{client: client}
}

func (l *Lister[T]) ListResources(ctx context.Context, kind domain.ResourceKind, q domain.ResourceQuery) ([]T, int, error) {
	path, err := resourcePath(kind)
	if err != nil {
		return nil, 0, err
	}
	values, err := EncodeQuery(q)
	if err != nil {
		return nil, 0, domain.ValidationError("list "+string(kind), err.Error())
	}

	var out listResponse[T]
	if err := l.client.do(ctx, call{
		op:       "list " + string(kind),
		method:   http.MethodGet,
		path:     path,
		endpoint: path,
		query:    values,
		auth:     sessionBearer,
		out:      &out,
	}); err != nil {
		return nil, 0, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	if out.TotalPages < 0 {
		out.TotalPages = 0
	}
	return out.Items, out.TotalPages, nil
}

// MutateResource sends a partial update for one item.
func (c *Client) MutateResource(ctx context.Context, kind domain.ResourceKind, itemID string, patch map[string]any) error {
	path, err := resourcePath(kind)
	if err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.ValidationError("mutate "+string(kind), "item id is required")
	}
	return c.do(ctx, call{
		op:       "mutate " + string(kind),
		method:   http.MethodPatch,
		path:     path + "/" + url.PathEscape(itemID),
		endpoint: path + "/:id",
		body:     patch,
		auth:     sessionBearer,
	})
}

type promoteRequest struct {
	Role        string   `json:"admin_role"`
	Permissions []string `json:"permissions"`
}

// PromoteUser grants a role with exactly the listed permissions.
func (c *Client) PromoteUser(ctx context.Context, userID string, role domain.Role, permissions []domain.PermissionID) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ValidationError("promote user", "user id is required")
	}
	ids := make([]string, len(permissions))
	for i, p := range permissions {
		ids[i] = string(p)
	}
	return c.do(ctx, call{
		op:       "promote user",
		method:   http.MethodPost,
		path:     "/api/admin/users/" + url.PathEscape(userID) + "/promote",
		endpoint: "/api/admin/users/:id/promote",
		body:     promoteRequest{Role: string(role), Permissions: ids},
		auth:     sessionBearer,
	})
}

var (
	_ port.ResourceMutator                       = (*Client)(nil)
	_ port.PromotionGateway                      = (*Client)(nil)
	_ port.ResourceLister[domain.PlatformUser]   = (*Lister[domain.PlatformUser])(nil)
	_ port.ResourceLister[domain.KYCSubmission]  = (*Lister[domain.KYCSubmission])(nil)
)

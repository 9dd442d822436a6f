package museum

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkordes/museo-companion/internal/domain"
)

// LoginURL is where a browser is sent to begin the OAuth login flow.
// The backend redirects back with the visitor's id, name, and email.
func (c *Client) LoginURL() string {
	return c.baseURL + "/auth/google/login"
}

// Logout tells the backend the visitor's token is no longer in use.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return fmt.Errorf("museum.Client.Logout: %w", err)
	}
	return nil
}

// GetVisitor fetches a visitor by id.
func (c *Client) GetVisitor(ctx context.Context, id int) (domain.Visitor, error) {
	var w visitorWire
	if err := c.do(ctx, http.MethodGet, "/visitantes/"+strconv.Itoa(id), nil, nil, &w); err != nil {
		return domain.Visitor{}, fmt.Errorf("museum.Client.GetVisitor: %w", err)
	}
	return w.toDomain(), nil
}

// UpdateVisitorProfile stores the fields collected by profile completion.
func (c *Client) UpdateVisitorProfile(ctx context.Context, id int, p domain.ProfileUpdate) (domain.Visitor, error) {
	var w visitorWire
	path := "/visitantes/" + strconv.Itoa(id) + "/"
	if err := c.do(ctx, http.MethodPut, path, nil, profileToWire(p), &w); err != nil {
		return domain.Visitor{}, fmt.Errorf("museum.Client.UpdateVisitorProfile: %w", err)
	}
	return w.toDomain(), nil
}

// ListVisitors returns one page of registered visitors.
func (c *Client) ListVisitors(ctx context.Context, p domain.PaginationParams) ([]domain.Visitor, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Offset()))
	q.Set("limit", strconv.Itoa(p.Limit))

	var ws []visitorWire
	if err := c.do(ctx, http.MethodGet, "/visitantes/", q, nil, &ws); err != nil {
		return nil, fmt.Errorf("museum.Client.ListVisitors: %w", err)
	}
	out := make([]domain.Visitor, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// GetPreferences fetches the visitor's stored interests.
// Returns domain.ErrNotFound (via *APIError) when no profile exists yet.
func (c *Client) GetPreferences(ctx context.Context, visitorID int) (domain.Preferences, error) {
	var w preferencesWire
	path := "/perfiles/visitante/" + strconv.Itoa(visitorID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &w); err != nil {
		return domain.Preferences{}, fmt.Errorf("museum.Client.GetPreferences: %w", err)
	}
	return domain.Preferences{
		Interests:     w.Intereses,
		AvailableTime: w.TiempoDisponible,
		DetailLevel:   w.NivelDetalle,
	}, nil
}

// Me returns the visitor the current bearer token belongs to.
func (c *Client) Me(ctx context.Context) (domain.Visitor, error) {
	var w visitorWire
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &w); err != nil {
		return domain.Visitor{}, fmt.Errorf("museum.Client.Me: %w", err)
	}
	return w.toDomain(), nil
}

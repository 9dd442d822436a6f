package museum

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkordes/museo-companion/internal/domain"
)

// ListAreas returns the active museum areas.
func (c *Client) ListAreas(ctx context.Context) ([]domain.Area, error) {
	q := url.Values{}
	q.Set("activa", "true")
	q.Set("limit", "50")

	var ws []areaWire
	if err := c.do(ctx, http.MethodGet, "/areas/", q, nil, &ws); err != nil {
		return nil, fmt.Errorf("museum.Client.ListAreas: %w", err)
	}
	out := make([]domain.Area, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// GetArea fetches a single area by id.
func (c *Client) GetArea(ctx context.Context, id int) (domain.Area, error) {
	var w areaWire
	if err := c.do(ctx, http.MethodGet, "/areas/"+strconv.Itoa(id), nil, nil, &w); err != nil {
		return domain.Area{}, fmt.Errorf("museum.Client.GetArea: %w", err)
	}
	return w.toDomain(), nil
}

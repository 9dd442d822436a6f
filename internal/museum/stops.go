package museum

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// MarkStopVisited records that the visitor finished a stop.
func (c *Client) MarkStopVisited(ctx context.Context, stopID int, at time.Time) error {
	yes := true
	body := stopPatchWire{Visitado: &yes, HoraFin: backendTime{at}}
	if err := c.do(ctx, http.MethodPatch, "/itinerarios/detalles/"+strconv.Itoa(stopID), nil, body, nil); err != nil {
		return fmt.Errorf("museum.Client.MarkStopVisited: %w", err)
	}
	return nil
}

// SkipStop records that the visitor skipped a stop.
func (c *Client) SkipStop(ctx context.Context, stopID int) error {
	yes := true
	body := stopPatchWire{Skip: &yes}
	if err := c.do(ctx, http.MethodPatch, "/itinerarios/detalles/"+strconv.Itoa(stopID), nil, body, nil); err != nil {
		return fmt.Errorf("museum.Client.SkipStop: %w", err)
	}
	return nil
}

// ReactivateStop clears a skipped stop back to pending.
func (c *Client) ReactivateStop(ctx context.Context, stopID int) error {
	path := "/detalles/" + strconv.Itoa(stopID) + "/reactivar"
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, nil); err != nil {
		return fmt.Errorf("museum.Client.ReactivateStop: %w", err)
	}
	return nil
}

// UnmarkStop clears a visited stop back to pending.
func (c *Client) UnmarkStop(ctx context.Context, stopID int) error {
	path := "/detalles/" + strconv.Itoa(stopID) + "/desmarcar"
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, nil); err != nil {
		return fmt.Errorf("museum.Client.UnmarkStop: %w", err)
	}
	return nil
}

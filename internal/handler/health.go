package handler

import (
	"context"
	"fmt"
	"net/http"
)

// Pinger is satisfied by *sqlite.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /healthz.
func Health(db Pinger) Func {
	return func(r *http.Request) (*Result, error) {
		if err := db.Ping(r.Context()); err != nil {
			return nil, fmt.Errorf("health: pinging database: %w", err)
		}
		return success(nil, "ok"), nil
	}
}

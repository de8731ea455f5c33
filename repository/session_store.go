package repository

import (
	"context"
	"time"
)

// SessionTTL is how long a browser session keeps its application number.
const SessionTTL = 24 * time.Hour

// SessionStore maps a session id to the application number it is filling in.
// Get reports a missing or expired session as found=false with a nil error;
// an error means the store could not be asked.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (number string, found bool, err error)
	Set(ctx context.Context, sessionID string, applicationNumber string) error
}

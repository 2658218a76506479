// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Worker is a background loop owned by the manager. Run must return once
// ctx is canceled.
type Worker interface {
	Run(ctx context.Context) error
}

// Deps are the components a Manager runs. Worker may be nil for an API-only
// daemon.
type Deps struct {
	Logger     zerolog.Logger
	APIHandler http.Handler
	Worker     Worker
}

// Validate rejects a disabled logger such as zerolog.Nop() and a
// missing handler.
func (d *Deps) Validate() error {
	switch {
	case d.Logger.GetLevel() == zerolog.Disabled:
		return ErrMissingLogger
	case d.APIHandler == nil:
		return ErrMissingAPIHandler
	}
	return nil
}

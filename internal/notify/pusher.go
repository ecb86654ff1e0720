package notify

import (
	"context"
	"fmt"

	"github.com/brewtab/ordering-backend/pkg/logger"
)

// LogPusher records deliveries in the application log. It backs local and
// staging environments where no push provider credentials exist.
type LogPusher struct {
	logg *logger.Logger
}

// NewLogPusher builds a log-backed pusher.
func NewLogPusher(logg *logger.Logger) (*LogPusher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogPusher{logg: logg}, nil
}

// Push implements Pusher.
func (p *LogPusher) Push(ctx context.Context, token, platform, title, body string) error {
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"platform": platform,
		"title":    title,
	})
	p.logg.Info(logCtx, "push notification dispatched")
	return nil
}

package logging

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/container"
)

// ResolutionObserver logs every resolution frame of a container. Successful
// frames log at debug, failures at warn; wire it in only when resolution
// tracing is wanted, the volume is one entry per frame.
type ResolutionObserver struct {
	log *Logger
}

var _ container.Observer = (*ResolutionObserver)(nil)

// NewResolutionObserver creates an observer writing through the logger under
// the "resolver" name.
func NewResolutionObserver(log *Logger) *ResolutionObserver {
	return &ResolutionObserver{log: log.Named("resolver")}
}

// ObserveResolution implements container.Observer.
func (o *ResolutionObserver) ObserveResolution(ev container.ResolutionEvent) {
	fields := []zap.Field{
		zap.String("trace", ev.TraceID),
		zap.String("requested", ev.Requested.Name()),
		zap.Int("depth", ev.Depth),
		zap.Duration("took", ev.Duration),
	}
	if !ev.Concrete.IsZero() {
		fields = append(fields,
			zap.String("concrete", ev.Concrete.Name()),
			zap.Stringer("lifetime", ev.Lifetime),
		)
	}
	if ev.CacheHit {
		fields = append(fields, zap.Bool("cache_hit", true))
	}

	if ev.Err != nil {
		o.log.Warn("resolution failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	o.log.Debug("resolved", fields...)
}

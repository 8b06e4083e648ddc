package save

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// saveTimeout bounds a single autosave write.
const saveTimeout = 10 * time.Second

// Autosaver periodically saves through a Coordinator. Time toward the next
// save accrues on a coarse tick; while the suppression gate is up (menus
// that mutate armory state mid-interaction raise it) accrued time is thrown
// away, so a save never lands mid-edit and the interval restarts clean when
// the gate drops.
//
// Autosaver implements the server Service contract: Start blocks until Stop.
type Autosaver struct {
	coord    *Coordinator
	interval time.Duration
	tick     time.Duration
	logger   *zap.Logger

	suppressed atomic.Bool
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewAutosaver returns an autosaver that saves every interval, checking the
// gate every tick.
//
// Precondition: 0 < tick <= interval (panics otherwise).
func NewAutosaver(coord *Coordinator, interval, tick time.Duration, logger *zap.Logger) *Autosaver {
	if tick <= 0 || interval <= 0 || tick > interval {
		panic(fmt.Sprintf("save: NewAutosaver: need 0 < tick <= interval, got tick=%v interval=%v", tick, interval))
	}
	return &Autosaver{
		coord:    coord,
		interval: interval,
		tick:     tick,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Suppress raises or drops the autosave gate.
//
// Postcondition: with on, no autosave fires and accrued time is discarded
// until the gate drops.
func (a *Autosaver) Suppress(on bool) {
	a.suppressed.Store(on)
}

// Suppressed reports whether the gate is up.
func (a *Autosaver) Suppressed() bool {
	return a.suppressed.Load()
}

// Start runs the autosave loop until Stop is called. Saves also stay off
// until the coordinator's restore has finished; an autosave before that
// would overwrite the blob with a half-restored armory.
func (a *Autosaver) Start() error {
	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	var accrued time.Duration
	for {
		select {
		case <-a.stop:
			a.finalSave()
			return nil
		case <-ticker.C:
			if a.suppressed.Load() || !a.coord.Restored() {
				accrued = 0
				continue
			}
			accrued += a.tick
			if accrued < a.interval {
				continue
			}
			accrued = 0
			a.save("interval")
		}
	}
}

// Stop ends the loop. A final save is written on the way out so a quit
// between intervals loses nothing.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// finalSave writes the shutdown save when it is safe to do so.
func (a *Autosaver) finalSave() {
	if a.suppressed.Load() || !a.coord.Restored() {
		a.logger.Info("skipping final save",
			zap.Bool("suppressed", a.suppressed.Load()),
			zap.Bool("restored", a.coord.Restored()))
		return
	}
	a.save("shutdown")
}

func (a *Autosaver) save(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.coord.Save(ctx); err != nil {
		a.logger.Error("autosave failed", zap.String("reason", reason), zap.Error(err))
		return
	}
	a.logger.Debug("autosave written", zap.String("reason", reason))
}

package armory

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gunbench/gunbench/internal/game/gunsmith"
)

// ErrNothingMounted is returned by workbench operations that need a gun on
// the bench.
var ErrNothingMounted = errors.New("armory: nothing mounted")

// ErrNoBarrel is returned when welding a gun that has no barrel installed.
var ErrNoBarrel = errors.New("armory: no barrel installed")

// Workbench holds the single gun currently being worked on. Mounting does
// not move the gun out of its storage slot; the bench only borrows the
// instance.
//
// A Workbench is safe for concurrent use.
type Workbench struct {
	mu      sync.Mutex
	mounted *gunsmith.Gun
	logger  *zap.Logger
}

// NewWorkbench returns an empty workbench.
//
// Precondition: logger must be non-nil.
func NewWorkbench(logger *zap.Logger) *Workbench {
	return &Workbench{logger: logger}
}

// Mount places g on the bench and returns the gun it displaced, or nil.
// The displaced gun is untouched otherwise; if it lives in a storage slot
// it stays there.
//
// Precondition: g must be non-nil (panics otherwise); use Unmount to clear.
func (w *Workbench) Mount(g *gunsmith.Gun) *gunsmith.Gun {
	if g == nil {
		panic("armory: Workbench.Mount: gun must not be nil")
	}
	w.mu.Lock()
	prev := w.mounted
	w.mounted = g
	w.mu.Unlock()

	w.logger.Debug("gun mounted on workbench", zap.String("gun", g.Name()))
	return prev
}

// Unmount clears the bench and returns the gun that was mounted, or nil.
func (w *Workbench) Unmount() *gunsmith.Gun {
	w.mu.Lock()
	prev := w.mounted
	w.mounted = nil
	w.mu.Unlock()

	if prev != nil {
		w.logger.Debug("workbench cleared", zap.String("gun", prev.Name()))
	}
	return prev
}

// Mounted returns the gun on the bench, or nil when the bench is empty.
func (w *Workbench) Mounted() *gunsmith.Gun {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}

// Weld advances the weld on the mounted gun's barrel by delta and returns
// the resulting weld state.
//
// Precondition:  delta >= 0.
// Postcondition: returns ErrNothingMounted with an empty bench and
// ErrNoBarrel when the mounted gun lacks a barrel.
func (w *Workbench) Weld(delta float64) (gunsmith.WeldState, error) {
	w.mu.Lock()
	g := w.mounted
	w.mu.Unlock()
	if g == nil {
		return gunsmith.WeldState{}, fmt.Errorf("armory: Workbench.Weld: %w", ErrNothingMounted)
	}
	barrel := g.Part(gunsmith.KindBarrel)
	if barrel == nil {
		return gunsmith.WeldState{}, fmt.Errorf("armory: Workbench.Weld: %w", ErrNoBarrel)
	}
	barrel.Weld.Advance(delta)
	state := *barrel.Weld
	if state.Complete {
		w.logger.Info("barrel weld complete",
			zap.String("gun", g.Name()), zap.String("barrel", barrel.Name))
	}
	return state, nil
}

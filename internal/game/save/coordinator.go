package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gunbench/gunbench/internal/game/armory"
	"github.com/gunbench/gunbench/internal/game/bank"
	"github.com/gunbench/gunbench/internal/game/gunsmith"
	"github.com/gunbench/gunbench/internal/storage"
)

// ErrRestoreActive is returned when Restore is called while a restore is
// running or after one has finished. A process restores at most once.
var ErrRestoreActive = errors.New("save: restore already started")

// Restore guard states.
const (
	stateIdle int32 = iota
	stateRestoring
	stateDone
)

// Options tunes the restore stage delays. The delays exist for the
// presentation layer: racked guns materialise once the rack scenery is up,
// and the workbench gun a beat after that.
type Options struct {
	// RackDelay postpones the rack stage after a restore begins.
	RackDelay time.Duration
	// WorkbenchDelay postpones the workbench stage after the rack stage
	// completes.
	WorkbenchDelay time.Duration
}

// Coordinator owns the save blob of one profile: it snapshots the wallet,
// rack, and workbench into the blob, and it restores them from the blob in
// stages. Exactly one restore may run per process; Done is closed when it
// finishes, successfully or not.
type Coordinator struct {
	store  storage.SaveStore
	wallet *bank.Wallet
	rack   *armory.Rack
	bench  *armory.Workbench
	base   gunsmith.Stats
	opts   Options
	logger *zap.Logger

	state      atomic.Int32
	done       chan struct{}
	signalOnce sync.Once
}

// NewCoordinator wires a coordinator over the given store and game state.
// base is the stat template restored guns are rebuilt on.
//
// Precondition: store, wallet, rack, bench, and logger must be non-nil.
func NewCoordinator(store storage.SaveStore, wallet *bank.Wallet, rack *armory.Rack,
	bench *armory.Workbench, base gunsmith.Stats, opts Options, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		wallet: wallet,
		rack:   rack,
		bench:  bench,
		base:   base,
		opts:   opts,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Done returns a channel closed once restore has finished, including the
// fresh-start and corrupt-save paths. Gameplay systems that must not run
// against a half-restored armory wait on it.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Restored reports whether restore has finished.
func (c *Coordinator) Restored() bool {
	return c.state.Load() == stateDone
}

// Save snapshots the wallet, every racked gun, and the workbench gun, and
// writes the blob in a single store write. A gun sitting in a storage slot
// while mounted on the workbench is one live instance; both records are
// snapshots of it and therefore identical.
//
// Postcondition: on error the previously stored blob is untouched.
func (c *Coordinator) Save(ctx context.Context) error {
	data := c.snapshot()
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("save: Coordinator.Save: encoding: %w", err)
	}
	if err := c.store.Write(ctx, blob); err != nil {
		return fmt.Errorf("save: Coordinator.Save: %w", err)
	}
	c.logger.Info("game saved",
		zap.Int("racked_guns", len(data.Racks)),
		zap.Bool("workbench", data.Workbench.Valid()),
		zap.Int("currency", data.Currency),
		zap.Int("bytes", len(blob)))
	return nil
}

func (c *Coordinator) snapshot() Data {
	entries := c.rack.Entries()
	data := Data{
		Version:  Version,
		Currency: c.wallet.Balance(),
		Racks:    make([]GunRecord, 0, len(entries)),
	}
	for _, e := range entries {
		data.Racks = append(data.Racks, SnapshotGun(e.Gun))
	}
	if mounted := c.bench.Mounted(); mounted != nil {
		data.Workbench = SnapshotGun(mounted)
	}
	return data
}

// Restore loads the save blob and rebuilds game state from it. The call
// returns once the blob is decoded and the currency applied; the rack and
// workbench stages continue in the background on their configured delays,
// and Done is closed when both finish.
//
// Failure handling is split by kind:
//   - a second Restore call returns ErrRestoreActive;
//   - store errors (Exists or Read) reset the guard and return the error,
//     so the caller may retry;
//   - a blob that exists but does not decode fails open: the error is
//     logged, state stays fresh, and the next save replaces the blob;
//   - individual stage failures are logged and skipped, never retried, and
//     never block Done.
func (c *Coordinator) Restore(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateIdle, stateRestoring) {
		return fmt.Errorf("save: Coordinator.Restore: %w", ErrRestoreActive)
	}

	exists, err := c.store.Exists(ctx)
	if err != nil {
		c.state.Store(stateIdle)
		return fmt.Errorf("save: Coordinator.Restore: %w", err)
	}
	if !exists {
		c.logger.Info("no save data, starting fresh")
		c.finish()
		return nil
	}

	blob, err := c.store.Read(ctx)
	if err != nil {
		c.state.Store(stateIdle)
		return fmt.Errorf("save: Coordinator.Restore: %w", err)
	}

	var data Data
	if err := json.Unmarshal(blob, &data); err != nil {
		// Fail open: a corrupt blob must not brick the profile. Play
		// starts fresh and the next save overwrites it.
		c.logger.Error("save data corrupt, starting fresh",
			zap.Error(err), zap.Int("bytes", len(blob)))
		c.finish()
		return nil
	}
	if data.Version > Version {
		c.logger.Warn("save data from a newer build, starting fresh",
			zap.Int("blob_version", data.Version), zap.Int("supported", Version))
		c.finish()
		return nil
	}

	if err := c.wallet.SetBalance(data.Currency); err != nil {
		c.logger.Warn("persisted currency invalid, keeping current balance",
			zap.Int("currency", data.Currency), zap.Error(err))
	}

	rackDone := make(chan struct{})
	var eg errgroup.Group
	eg.Go(func() error {
		defer close(rackDone)
		c.runStage(ctx, "rack", c.opts.RackDelay, func() {
			c.restoreRack(data.Racks)
		})
		return nil
	})
	eg.Go(func() error {
		// The workbench record may reference a racked gun by name, so
		// this stage has to observe the rack stage's results.
		select {
		case <-rackDone:
		case <-ctx.Done():
			c.logger.Warn("workbench restore cancelled", zap.Error(ctx.Err()))
			return nil
		}
		c.runStage(ctx, "workbench", c.opts.WorkbenchDelay, func() {
			c.restoreWorkbench(data.Workbench)
		})
		return nil
	})
	go func() {
		_ = eg.Wait()
		c.finish()
		c.logger.Info("restore complete",
			zap.Int("racked_guns", c.rack.Len()),
			zap.Bool("workbench_mounted", c.bench.Mounted() != nil))
	}()
	return nil
}

// runStage waits out the stage delay and runs fn, containing any panic.
// A failed stage leaves its portion of the state unrestored; the other
// stages and Done are unaffected.
func (c *Coordinator) runStage(ctx context.Context, name string, delay time.Duration, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("restore stage failed",
				zap.String("stage", name), zap.Any("panic", r))
		}
	}()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			c.logger.Warn("restore stage cancelled",
				zap.String("stage", name), zap.Error(ctx.Err()))
			return
		}
	}
	fn()
}

func (c *Coordinator) restoreRack(records []GunRecord) {
	restored, discarded := 0, 0
	for i, rec := range records {
		if !rec.Valid() {
			discarded++
			c.logger.Debug("discarding invalid gun record", zap.Int("slot", i))
			continue
		}
		g, skipped := rec.Build(c.base)
		if skipped > 0 {
			c.logger.Warn("gun restored with unreadable parts",
				zap.String("gun", g.Name()), zap.Int("skipped", skipped))
		}
		if g.Name() == "" && len(g.Parts()) == 0 {
			discarded++
			c.logger.Debug("gun record built empty, discarding", zap.Int("slot", i))
			continue
		}
		if !c.rack.TryAssign(g) {
			c.logger.Warn("rack full, dropping restored gun",
				zap.String("gun", g.Name()), zap.Int("slot", i))
			continue
		}
		restored++
	}
	c.logger.Info("rack restored",
		zap.Int("guns", restored), zap.Int("discarded", discarded))
}

func (c *Coordinator) restoreWorkbench(rec GunRecord) {
	if !rec.Valid() {
		c.logger.Debug("no workbench gun persisted")
		return
	}
	// A named workbench gun that also sits in a storage slot was saved
	// twice from one instance; remount the racked instance instead of
	// duplicating it.
	if rec.Name != "" {
		if g := c.rack.FindByName(rec.Name); g != nil {
			c.bench.Mount(g)
			c.logger.Info("workbench gun matched rack entry", zap.String("gun", rec.Name))
			return
		}
	}
	g, skipped := rec.Build(c.base)
	if skipped > 0 {
		c.logger.Warn("workbench gun restored with unreadable parts",
			zap.String("gun", g.Name()), zap.Int("skipped", skipped))
	}
	if g.Name() == "" && len(g.Parts()) == 0 {
		c.logger.Debug("workbench record built empty, discarding")
		return
	}
	c.bench.Mount(g)
	c.logger.Info("workbench restored", zap.String("gun", g.Name()))
}

func (c *Coordinator) finish() {
	c.state.Store(stateDone)
	c.signalOnce.Do(func() { close(c.done) })
}

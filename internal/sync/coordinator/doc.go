// Package coordinator schedules synchronization passes.
//
// A pass enumerates every guild the bot belongs to and runs the guild updater
// for each of them, with at most a configured number of guilds in flight.
// Passes are triggered by a ticker whose interval is computed once at start
// from the number of monitored servers and the status provider's request
// budget.
//
// Passes never overlap: a trigger that fires while a pass is still running
// is skipped, logged and counted.
//
// # Usage
//
//	updater := sync.NewUpdater(store, statusClient, platform)
//	c := coordinator.New(updater, platform, store, cfg)
//
//	go func() {
//	    if err := c.Start(ctx); err != nil {
//	        slog.Error("Coordinator failed", "error", err)
//	    }
//	}()
//
//	// on shutdown
//	_ = c.Stop()
//
// RunPass executes a single pass synchronously.
package coordinator

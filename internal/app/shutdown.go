package app

import (
	"context"

	"tinyhttpd/pkg/state/logger"
)

// Shutdown releases what Run leaves behind: the admin server, the report
// scheduler and the journal. When Run never started, it also closes the
// listener and disposes the pool. Safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	a.shutdownOnce.Do(func() {
		if !a.ran.Load() {
			logger.Info("shutdown: app never ran, releasing listener and pool")
			a.coord.Fire("shutdown")
			a.acc.Run(a.coord.Stopped())
		}

		if a.admin != nil {
			logger.Info("shutdown: stopping admin server")
			a.adminClosing.Store(true)
			done := make(chan error, 1)
			go func() { done <- a.admin.Shutdown() }()
			select {
			case e := <-done:
				if e != nil {
					logger.Error("shutdown: admin shutdown error", "error", e)
				}
			case <-ctx.Done():
				logger.Warn("shutdown: admin shutdown timed out")
				err = ctx.Err()
			}
		}

		if a.reportCancel != nil {
			logger.Info("shutdown: stopping report scheduler")
			a.reportCancel()
		}

		if a.journal != nil {
			logger.Info("shutdown: closing journal")
			a.closeJournal()
		}

		logger.Info("shutdown: complete")
		logger.Sync()
	})
	return err
}

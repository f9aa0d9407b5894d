package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyOnSignal closes the application when one of signals arrives or ctx
// is done. With no signals it listens for SIGINT and SIGTERM. The returned
// channel receives Close's result, then closes.
//
//	done := application.NotifyOnSignal(ctx)
//	if err := <-done; err != nil {
//	    logger.Error("shutdown", zap.Error(err))
//	}
func (a *Application) NotifyOnSignal(ctx context.Context, signals ...os.Signal) <-chan error {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	sctx, stop := signal.NotifyContext(ctx, signals...)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		<-sctx.Done()
		stop()
		a.logger.Info("shutting down")
		done <- a.Close()
	}()
	return done
}

package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketfocus/internal/report"
	"github.com/alanyoungcy/marketfocus/internal/server"
	"github.com/alanyoungcy/marketfocus/internal/server/handler"
	"github.com/alanyoungcy/marketfocus/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// ScanMode runs one cycle and prints the report.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	res, err := deps.Markets.Scan(ctx)
	if err != nil {
		return err
	}
	return report.Write(a.out, res, a.reportOptions())
}

// WatchMode rescans on scan.interval and prints each report until ctx is
// cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode", slog.Duration("interval", a.cfg.Scan.Interval.Duration))
	return deps.Markets.RunLoop(ctx, a.cfg.Scan.Interval.Duration, a.printReport)
}

// ServerMode serves the HTTP API. Market endpoints scan on demand once the
// latest cycle is older than scan.interval.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the scan loop and the HTTP API side by side.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.Markets.RunLoop(ctx, a.cfg.Scan.Interval.Duration, a.printReport)
	})
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(),
		Books:   handler.NewBookHandler(deps.Books, a.logger),
		Markets: handler.NewMarketHandler(deps.Markets, a.logger),
	}, deps.RateLimiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

func (a *App) printReport(res service.ScanResult) {
	if err := report.Write(a.out, res, a.reportOptions()); err != nil {
		a.logger.Error("write report failed", slog.String("error", err.Error()))
	}
}

func (a *App) reportOptions() report.Options {
	return report.Options{
		ValidPricesOnly: a.cfg.Scan.ValidPricesOnly,
		ShowInvalid:     a.cfg.Scan.ShowInvalid,
	}
}

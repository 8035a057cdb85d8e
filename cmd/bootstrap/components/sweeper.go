package components

import (
	"context"
	"log/slog"
	"time"

	"shopcore/internal/usecase/commands"

	"go.uber.org/fx"
)

const sweepInterval = time.Minute

var SweeperModule = fx.Module("sweeper",
	fx.Invoke(StartIntentSweeper),
)

// StartIntentSweeper expires payment intents whose TTL has passed. Expiry is
// also enforced inline on verify, so the sweeper only keeps the table tidy
// and frees abandoned fingerprints for new checkouts.
func StartIntentSweeper(lc fx.Lifecycle, cmds commands.CheckoutCommands, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						expired, err := cmds.ExpireStaleIntents(ctx)
						if err != nil {
							logger.Warn("intent sweep failed", "error", err.Error())
							continue
						}
						if expired > 0 {
							logger.Info("expired stale payment intents", "count", expired)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

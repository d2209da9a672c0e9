package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"school-notifier/cmd/bootstrap"
	"school-notifier/internal/domain/notice"
	"school-notifier/internal/infra/db"
	"school-notifier/internal/pkg/config"
	"school-notifier/internal/usecase/checks"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

func init() {
	// 設定ミスでもデバッグ情報を公開しない（フェイルセーフ）
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			logger.Info("🚀 サーバーを起動します", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("サーバーの起動に失敗しました", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("🛑 サーバーを停止します")
			return srv.Shutdown(ctx)
		},
	})
}

func serve(_ context.Context, _ *cli.Command) error {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(func() *gin.Engine {
			return gin.New()
		}),
		fx.Invoke(startServer),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("アプリケーションの起動に失敗しました", "error", err)
		return err
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("アプリケーションの停止に失敗しました", "error", err)
	}

	slog.Info("アプリケーションが正常に停止しました")
	return nil
}

func runChecks(ctx context.Context, cmd *cli.Command) error {
	kinds := make([]notice.Kind, 0, len(notice.Kinds))
	for _, name := range cmd.StringSlice("only") {
		kind, err := notice.ParseKind(name)
		if err != nil {
			return cli.Exit("unknown check: "+name, 2)
		}
		kinds = append(kinds, kind)
	}

	var (
		runner *checks.Runner
		logger *slog.Logger
	)
	app := fx.New(
		bootstrap.CoreModule,
		fx.Populate(&runner, &logger),
		fx.NopLogger,
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			slog.Error("アプリケーションの停止に失敗しました", "error", err)
		}
	}()

	if len(kinds) == 0 {
		kinds = runner.Kinds()
	}
	report := runner.RunSelected(ctx, kinds)
	for _, res := range report.Results {
		attrs := []any{
			"check", res.Check.String(),
			"run_id", res.RunID,
			"notified", res.Notified,
			"failed", res.Failed,
		}
		if res.Err != nil {
			attrs = append(attrs, "error", res.Err.Error())
		}
		logger.Info("check result", attrs...)
	}

	if !report.OK() {
		return cli.Exit("one or more checks did not complete cleanly", 1)
	}
	return nil
}

func migrate(ctx context.Context, _ *cli.Command) error {
	var (
		pool   *pgxpool.Pool
		logger *slog.Logger
	)
	app := fx.New(
		bootstrap.ConfigModule,
		bootstrap.LoggerModule,
		bootstrap.DBModule,
		fx.Populate(&pool, &logger),
		fx.NopLogger,
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return db.Migrate(ctx, pool, logger)
}

func main() {
	cmd := &cli.Command{
		Name:   "school-notifier",
		Usage:  "Scheduled overdue, due-soon, low-stock and maintenance notices for the school backend",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the scheduler and the admin HTTP API",
				Action: serve,
			},
			{
				Name:  "check",
				Usage: "Run checks once and exit",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "only",
						Usage: "Run only the named checks (overdue_lending, due_soon_lending, low_stock, upcoming_maintenance)",
					},
				},
				Action: runChecks,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

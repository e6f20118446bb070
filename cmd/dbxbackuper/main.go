package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/internal/dockerfx"
	"github.com/yurykabanov/dbxbackuper/internal/domainfx"
	"github.com/yurykabanov/dbxbackuper/internal/loggerfx"
	"github.com/yurykabanov/dbxbackuper/internal/metricsfx"
	"github.com/yurykabanov/dbxbackuper/internal/sqlfx"
	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/schedule"
)

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dbxbackuper: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := configfx.PFlags()

	cmd := &cobra.Command{
		Use:   "dbxbackuper",
		Short: "Back up database files into a dated, deduplicated archive tree",
		Long: `dbxbackuper stops the database server, copies its files into a dated staging
tree, restarts the server and archives every copy whose content changed,
evicting the oldest archives when the backup disk runs low.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().AddFlagSet(flags)

	cmd.AddCommand(
		newPipelineCmd(flags, "run", "Run both phases with the producer stopped during copy",
			func(ctx context.Context, p *backup.Pipeline) error {
				return p.Run(ctx)
			}),
		newPipelineCmd(flags, "copy", "Copy eligible source files into the staging tree",
			func(ctx context.Context, p *backup.Pipeline) error {
				_, err := p.RunCopyPhase(appcontext.WithNewRunId(ctx))
				return err
			}),
		newPipelineCmd(flags, "archive", "Archive staged copies whose content changed",
			func(ctx context.Context, p *backup.Pipeline) error {
				_, err := p.RunArchivePhase(appcontext.WithNewRunId(ctx))
				return err
			}),
		newDaemonCmd(flags),
	)

	return cmd
}

func options(flags *pflag.FlagSet) fx.Option {
	return fx.Options(
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),

		fx.Logger(loggerfx.Logger()),

		fx.Supply(flags),

		loggerfx.Module,
		configfx.Module,
		sqlfx.Module,
		dockerfx.Module,
		metricsfx.Module,
		domainfx.Module,
	)
}

func newPipelineCmd(
	flags *pflag.FlagSet,
	use, short string,
	run func(ctx context.Context, p *backup.Pipeline) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pipeline *backup.Pipeline

			app := fx.New(
				options(flags),
				fx.Populate(&pipeline),
			)

			return runApp(cmd.Context(), app, func(ctx context.Context) error {
				return run(ctx, pipeline)
			})
		},
	}
}

func newDaemonCmd(flags *pflag.FlagSet) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the pipeline on the configured cron schedule and serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scheduler *schedule.Scheduler

			app := fx.New(
				options(flags),
				metricsfx.ServerModule,
				domainfx.ScheduleModule,
				fx.Populate(&scheduler),
			)

			return runApp(cmd.Context(), app, func(ctx context.Context) error {
				if runNow {
					scheduler.Trigger()
				}

				select {
				case <-ctx.Done():
				case <-app.Done():
				}

				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "Trigger a run right after start")

	return cmd
}

// runApp starts app, runs fn and stops app regardless of fn's result.
func runApp(ctx context.Context, app *fx.App, fn func(ctx context.Context) error) error {
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}

	if runErr != nil {
		loggerfx.Logger().WithError(runErr).Error("Run failed")
	}

	return runErr
}

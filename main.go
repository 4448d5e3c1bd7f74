package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskgraph/internal/commands"
	"github.com/colonyops/taskgraph/internal/core/config"
	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/logging"
	"github.com/colonyops/taskgraph/internal/taskgraph"
	"github.com/colonyops/taskgraph/internal/telemetry"
	"github.com/colonyops/taskgraph/pkg/iojson"
	"github.com/colonyops/taskgraph/pkg/logutils"
	"github.com/colonyops/taskgraph/pkg/profiler"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() reads
	// runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	// TASKGRAPH_* variables can also be set in a .env file in the working
	// directory. Variables already in the environment win.
	envErr := godotenv.Load()

	var (
		logCloser         func()
		telemetryShutdown func(context.Context) error
		tgApp             = &taskgraph.App{}
		profServer        *profiler.Server
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskgraph",
		Usage:     "Track tasks, lists and their dependencies",
		UsageText: "taskgraph [global options] command [command options]",
		Description: `taskgraph keeps a graph of tasks grouped into lists. Tasks have
priorities, dependencies and subtasks; "taskgraph next" picks what to
work on, and "taskgraph breakdown" splits a goal into a chain of steps.

State is saved after every change to the configured storage backend
(SQLite by default, under the data directory).`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKGRAPH_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       `path to log file, or "-" for console output on stderr (defaults to <data-dir>/taskgraph.log)`,
				Sources:     cli.EnvVars("TASKGRAPH_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKGRAPH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKGRAPH_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
				Sources:     cli.EnvVars("TASKGRAPH_PROFILER_PORT"),
				Destination: &flags.ProfilerPort,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Log to <data-dir>/taskgraph.log unless a file or "-" is given
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "taskgraph.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
				log.Warn().Err(envErr).Msg("failed to load .env file")
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			telemetryShutdown, err = telemetry.Init(ctx, telemetry.Config{
				Enabled:        cfg.Telemetry.Enabled,
				ServiceName:    cfg.Telemetry.ServiceName,
				ServiceVersion: version,
				OTLPEndpoint:   cfg.Telemetry.Endpoint,
				Insecure:       cfg.Telemetry.Insecure,
				SampleRatio:    cfg.Telemetry.SampleRatio,
			})
			if err != nil {
				// Tracing is optional; keep going without it.
				log.Warn().Err(err).Msg("failed to initialize telemetry")
			}

			bus := eventbus.New()
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

			a, err := taskgraph.NewApp(ctx, cfg, bus, log.Logger)
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*tgApp = *a

			if flags.ProfilerPort > 0 {
				profServer = profiler.New(flags.ProfilerPort, logging.Component("profiler"))
				profServer.Handle("/debug/taskgraph/stats", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					_ = iojson.WriteLine(w, tgApp.Graph.GetStats(r.URL.Query().Get("list")))
				}))
				if err := profServer.Start(ctx); err != nil {
					return ctx, fmt.Errorf("failed to start profiler: %w", err)
				}
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if profServer != nil {
				if err := profServer.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("failed to shutdown profiler server")
				}
			}

			var closeErr error
			if err := tgApp.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				closeErr = err
			}

			if telemetryShutdown != nil {
				if err := telemetryShutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("failed to flush telemetry")
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return closeErr
		},
	}

	app = commands.NewTaskCmd(flags, tgApp).Register(app)
	app = commands.NewListCmd(flags, tgApp).Register(app)
	app = commands.NewNextCmd(flags, tgApp).Register(app)
	app = commands.NewBreakdownCmd(flags, tgApp).Register(app)
	app = commands.NewTransferCmd(flags, tgApp).Register(app)
	app = commands.NewBatchCmd(flags, tgApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags, tgApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		_ = iojson.WriteError(os.Stderr, runErr.Error(), commands.ErrorData(runErr))
		exitCode = 1
	}

	os.Exit(exitCode)
}

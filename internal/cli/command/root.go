// Package command provides CLI command definitions for jobctl.
package command

import (
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/nodeops/jobctl/internal/cli/config"
	"github.com/nodeops/jobctl/internal/cli/connection"
	"github.com/nodeops/jobctl/internal/cli/output"
	"github.com/nodeops/jobctl/internal/core/service"
	"github.com/nodeops/jobctl/internal/infra/buildinfo"
	"github.com/nodeops/jobctl/internal/infra/tlsroots"
	"github.com/nodeops/jobctl/internal/storage/credfile"
	"github.com/nodeops/jobctl/internal/telemetry/logger"
)

// App creates the CLI application. Errors from actions propagate out
// of Run; the caller maps them to process exit codes.
func App() *cli.App {
	app := &cli.App{
		Name:    "jobctl",
		Usage:   "Manage jobs on a remote node",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			JobCommand(),
			SessionCommand(),
		},
		Before: setup,
		// Exit code mapping happens in main; suppress the default
		// os.Exit from inside Run.
		ExitErrHandler: func(c *cli.Context, err error) {},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "node-url",
			Aliases: []string{"n"},
			Usage:   "Node API base URL (e.g., http://localhost:6688)",
			EnvVars: []string{"JOBCTL_NODE_URL"},
		},
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Operator email for node login",
			EnvVars: []string{"JOBCTL_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Operator password for node login",
			EnvVars: []string{"JOBCTL_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "PEM file with extra trusted roots for https node URLs",
			EnvVars: []string{"JOBCTL_CA_CERT"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default ~/.jobctl/config.yaml)",
			EnvVars: []string{"JOBCTL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "token-file",
			Usage:   "Session token artifact path (default ~/.jobctl/session.json)",
			EnvVars: []string{"JOBCTL_TOKEN_FILE"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Per-request timeout",
			EnvVars: []string{"JOBCTL_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
			EnvVars: []string{"JOBCTL_VERBOSE"},
		},
	}
}

// setup runs before any action: configure logging and tag the
// invocation with a request id for log correlation.
func setup(c *cli.Context) error {
	logCfg := logger.DefaultConfig()
	if c.Bool("verbose") {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	ctx := logger.WithLogger(c.Context, log)
	ctx = logger.WithRequestID(ctx, ulid.Make().String())
	c.Context = ctx
	return nil
}

// loadConfig merges the config file, environment and flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("node-url") {
		cfg.Node.URL = c.String("node-url")
	}
	if c.IsSet("email") {
		cfg.Node.Email = c.String("email")
	}
	if c.IsSet("password") {
		cfg.Node.Password = c.String("password")
	}
	if c.IsSet("ca-cert") {
		cfg.Node.CACert = c.String("ca-cert")
	}
	if c.IsSet("token-file") {
		cfg.TokenFile = c.String("token-file")
	}
	if c.IsSet("timeout") {
		cfg.Node.Timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		cfg.Output.Format = c.String("output")
	}

	return cfg, nil
}

// services bundles everything an authenticated command needs.
type services struct {
	cfg     *config.Config
	client  *connection.HTTPClient
	store   *credfile.Store
	session *service.Session
	jobs    *service.Jobs
}

// buildServices assembles the transport, session manager and job
// client from the merged configuration.
func buildServices(c *cli.Context) (*services, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// --verbose wins over the configured level.
	if !c.Bool("verbose") {
		logger.SetLevel(cfg.Log.Level)
	}

	var opts []connection.Option
	if cfg.Node.CACert != "" {
		tlsCfg, err := tlsroots.ForNode(cfg.Node.CACert)
		if err != nil {
			return nil, fmt.Errorf("load CA certificate: %w", err)
		}
		opts = append(opts, connection.WithTLS(tlsCfg))
	}

	client := connection.NewHTTPClient(cfg.Node.URL, cfg.Node.Timeout, opts...)
	store := credfile.New(cfg.TokenFile)
	session := service.NewSession(client, store, cfg.Node.Email, cfg.Node.Password)

	return &services{
		cfg:     cfg,
		client:  client,
		store:   store,
		session: session,
		jobs:    service.NewJobs(client, session),
	}, nil
}

// newFormatter builds the output formatter from the merged config.
func newFormatter(cfg *config.Config, c *cli.Context) (output.Formatter, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, c.Bool("wide")), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

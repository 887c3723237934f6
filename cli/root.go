// Package cli implements the jsonreq command line, which embeds the
// dispatcher and moves JSON between files, stdin and stdout.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mnehpets/jsonreq/config"
	"github.com/mnehpets/jsonreq/demo"
	"github.com/mnehpets/jsonreq/jsonrpc"
	"github.com/mnehpets/jsonreq/logger"
	"github.com/mnehpets/jsonreq/state"
)

// app is the state shared by all subcommands once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	y        *state.Cell[int]
	endpoint *jsonrpc.Endpoint

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type rootFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	stateY     int
}

// NewRootCommand builds the jsonreq command tree reading from stdin and
// writing to stdout and stderr.
func NewRootCommand(version string, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	var flags rootFlags

	root := &cobra.Command{
		Use:           "jsonreq",
		Short:         "Invoke typed callables with JSON parameters",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, flags)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: ./jsonreq.yaml if present)")
	pf.StringVar(&flags.envFile, "env-file", "", "env file to load (default: ./.env if present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: console or json")
	pf.IntVar(&flags.stateY, "state-y", 0, "initial value of the shared cell bound to test_request's y")

	root.AddCommand(
		newDescribeCommand(a),
		newCallCommand(a),
		newSchemaCommand(a),
		newRPCCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	cfg, err := config.Load(flags.configPath, flags.envFile)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if cmd.Flags().Changed("state-y") {
		cfg.State.Y = flags.stateY
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, a.stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.y = state.NewCell("global_y", cfg.State.Y)
	a.endpoint = jsonrpc.NewEndpoint(jsonrpc.WithLogger(log))
	if err := demo.Register(a.endpoint, a.y, jsonrpc.WithLogger(log)); err != nil {
		return err
	}
	a.log.Debug().Int("y", a.y.Load()).Msg("registered " + demo.Method)
	return nil
}

// request returns the callable registered under name.
func (a *app) request(name string) (*jsonrpc.Request, error) {
	r, ok := a.endpoint.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown method %q", name)
	}
	return r, nil
}

// Execute runs the command line with the process's standard streams and
// returns the exit code.
func Execute(ctx context.Context, version string) int {
	root := NewRootCommand(version, os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

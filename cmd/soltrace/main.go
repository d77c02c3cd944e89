// Command soltrace classifies program log lines and reconstructs their
// invocation trees, from files, stdin or over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/soltrace/internal/config"
	"github.com/danmuck/soltrace/internal/logging"
	"github.com/danmuck/soltrace/internal/observability"
	"github.com/danmuck/soltrace/internal/pipeline"
	"github.com/danmuck/soltrace/internal/render"
	"github.com/danmuck/soltrace/internal/server"
	"github.com/danmuck/soltrace/internal/source"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "soltrace: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	configPath string
	input      string
	format     string
	output     string
	typed      bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "soltrace",
		Short:         "Classify program logs and rebuild their invocation trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file")
	flags.StringVar(&opts.input, "input", "-", "input file, - for stdin")
	flags.StringVar(&opts.format, "format", config.InputText, "input format: text or rpc")
	flags.StringVar(&opts.output, "output", config.OutputJSON, "output format: json, yaml or tree")
	flags.BoolVar(&opts.typed, "typed", false, "decode program ids and payloads")

	root.AddCommand(
		newClassifyCmd(opts),
		newTreeCmd(opts),
		newServeCmd(opts),
		newConfigCmd(),
	)
	return root
}

// setup merges config file and flags, then configures logging. Flags the
// user set win over the file.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := loadOverlay(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Input.Format = o.format
	}
	if flags.Changed("output") {
		cfg.Output.Format = o.output
	}
	if flags.Changed("typed") {
		cfg.Output.Typed = o.typed
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	o.cfg = cfg

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		logCfg.Level = lvl
	}
	logCfg.JSON = cfg.Log.JSON
	logCfg.Timestamp = cfg.Log.Timestamp
	logging.ConfigureWith(logCfg)
	observability.InitLogger(cfg.Server.Name)
	return nil
}

func (o *options) readInput(cmd *cobra.Command) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if o.input != "" && o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	raws, err := source.Read(r, o.cfg.Input.Format)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	log.Debug().Str("input", o.input).Int("lines", len(raws)).Msg("input read")
	return raws, nil
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print the kind and fields of every log line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := opts.readInput(cmd)
			if err != nil {
				return err
			}
			if opts.cfg.Output.Format == config.OutputTree {
				return fmt.Errorf("classify: output %q is not supported, use %s or %s", config.OutputTree, config.OutputJSON, config.OutputYAML)
			}
			return render.Write(cmd.OutOrStdout(), pipeline.Classify(raws), opts.cfg.Output.Format)
		},
	}
}

func newTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Rebuild the invocation tree of a log batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := opts.readInput(cmd)
			if err != nil {
				return err
			}
			res, err := pipeline.Tree(raws, opts.cfg.Output.Typed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Mode == observability.ModeTyped {
				return render.Frames(out, res.Typed, opts.cfg.Output.Format)
			}
			return render.Frames(out, res.Raw, opts.cfg.Output.Format)
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve classification and trees over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return server.New(cfg).Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check a config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "soltrace.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Strictly load a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

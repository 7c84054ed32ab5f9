package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/rawprobe/internal/config"
	"github.com/wesleyorama2/rawprobe/internal/logging"
	"github.com/wesleyorama2/rawprobe/internal/output"
	"github.com/wesleyorama2/rawprobe/internal/probe"
)

var version = "0.1.0"

// errReported marks a failure that has already been written to the user.
var errReported = errors.New("probe failed")

// NewRootCmd builds the rawprobe command
func NewRootCmd() *cobra.Command {
	return newRootCmd()
}

// newRootCmd applies extra after the flag-derived prober options.
func newRootCmd(extra ...probe.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rawprobe URL",
		Short:   "Time a single plain-HTTP GET phase by phase",
		Version: version,
		Long: `rawprobe sends one GET request over a raw TCP socket to port 80 and
breaks the latency down into DNS lookup, TCP connect, time to first byte
and content transfer. It then prints the response headers and a preview
of the body.

Only plain HTTP is supported. Any port in the URL is ignored.`,
		Example: "  rawprobe http://example.com\n  rawprobe -o json --dns-server 1.1.1.1 example.com/status",
		Args:    exactlyOneURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args, extra)
		},

		SilenceErrors: true,
	}

	cmd.Flags().DurationP("timeout", "t", probe.DefaultTimeout, "Connect and read timeout")
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolP("verbose", "v", false, "Show the connected address and response size")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("dns-server", "", "Resolve through this DNS server (host[:port]) instead of the system resolver")
	cmd.Flags().Int("preview", output.DefaultPreviewLimit, "Number of body characters to show in the text report (0 shows the whole body)")
	cmd.Flags().String("log-level", "warn", "Log level for stage events on stderr (debug, info, warn, error)")
	cmd.Flags().StringP("config", "c", "", "YAML file with default flag values")

	return cmd
}

// Execute runs the root command with the process arguments
func Execute() error {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the root command with explicit arguments and writers
func ExecuteArgs(args []string, stdout, stderr io.Writer) error {
	return executeArgs(args, stdout, stderr)
}

func executeArgs(args []string, stdout, stderr io.Writer, extra ...probe.Option) error {
	cmd := newRootCmd(extra...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}

func exactlyOneURL(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one URL argument, got %d", len(args))
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string, extra []probe.Option) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	logger, err := logging.New(opts.LogLevel, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(opts.Output)
	if err != nil {
		return err
	}

	noColor := opts.NoColor
	if f, ok := cmd.OutOrStdout().(*os.File); !ok || !output.IsTerminal(f) {
		noColor = true
	}
	formatter := output.GetFormatter(format, opts.Verbose, noColor, opts.Preview)

	probeOpts := []probe.Option{
		probe.WithTimeout(opts.Timeout),
		probe.WithLogger(logger),
	}
	if opts.DNSServer != "" {
		probeOpts = append(probeOpts, probe.WithResolver(probe.NewDNSResolver(opts.DNSServer)))
	}
	prober := probe.NewProber(append(probeOpts, extra...)...)

	locator := args[0]
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStart(locator))

	result, err := prober.Probe(locator)
	if err != nil {
		if format == output.FormatText {
			fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatError(err))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatError(err))
		}
		return errReported
	}

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(result))
	return nil
}

// options are the effective settings after merging the config file and flags.
type options struct {
	Timeout   time.Duration
	Output    string
	Verbose   bool
	NoColor   bool
	DNSServer string
	Preview   int
	LogLevel  string
}

// resolveOptions starts from the config file (or built-in defaults) and
// overrides every value whose flag was set explicitly.
func resolveOptions(cmd *cobra.Command) (options, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.Timeout = timeout.String()
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("dns-server") {
		cfg.DNSServer, _ = flags.GetString("dns-server")
	}
	if flags.Changed("preview") {
		cfg.Preview, _ = flags.GetInt("preview")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		return options{}, errs[0]
	}

	return options{
		Timeout:   cfg.TimeoutDuration(),
		Output:    cfg.Output,
		Verbose:   cfg.Verbose,
		NoColor:   cfg.NoColor,
		DNSServer: cfg.DNSServer,
		Preview:   cfg.Preview,
		LogLevel:  cfg.LogLevel,
	}, nil
}

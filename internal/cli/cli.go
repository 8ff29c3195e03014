package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/binverify/internal/app"
	"github.com/spf13/cobra"
)

// Version is reported by --version. It is overridden at build time with
// -ldflags "-X github.com/specialistvlad/binverify/internal/cli.Version=...".
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags holds the raw values bound to the root command.
type flags struct {
	layout    string
	osName    string
	variant   string
	libDir    string
	libExt    string
	manifests []string
	root      string
	sizeUnit  string
	report    string
	noColor   bool
	logFormat string
	logLevel  string
}

// newRootCommand builds the binverify command. onConfig receives the
// validated configuration; it is not called for --help or --version.
func newRootCommand(onConfig func(*app.Config)) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "binverify [OS VARIANT]",
		Short: "Verify that compiled binary artifacts are present and loadable",
		Long: `binverify - A post-build gate for compiled artifacts.

It checks that every expected file exists, prints its size, then attempts to
load each loader module. Exit code 0 means the build is usable, 1 means it
is not.

Passing OS and VARIANT positionally selects the native layout for that
platform, e.g. "binverify linux 64".`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 1:
				return fmt.Errorf("both OS and VARIANT must be given, got only %q", args[0])
			case 2:
				if cmd.Flags().Changed("os") || cmd.Flags().Changed("variant") {
					return fmt.Errorf("OS and VARIANT given both as arguments and flags")
				}
				if cmd.Flags().Changed("layout") && !strings.EqualFold(strings.TrimSpace(f.layout), "native") {
					return fmt.Errorf("OS and VARIANT select the native layout, but --layout is %q", f.layout)
				}
				f.osName, f.variant = args[0], args[1]
				f.layout = "native"
			}

			cfg, err := app.NewConfig(app.Config{
				Layout:        f.layout,
				OS:            f.osName,
				Variant:       f.variant,
				LibDir:        f.libDir,
				LibExt:        f.libExt,
				ManifestPaths: f.manifests,
				Root:          f.root,
				SizeUnit:      f.sizeUnit,
				ReportPath:    f.report,
				NoColor:       f.noColor,
				LogFormat:     f.logFormat,
				LogLevel:      f.logLevel,
			})
			if err != nil {
				return err
			}
			onConfig(cfg)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.layout, "layout", "wasm", "Built-in artifact layout. Options: 'wasm', 'wasm-flat', 'native'.")
	fl.StringVar(&f.osName, "os", "win", "Target OS for the native layout.")
	fl.StringVar(&f.variant, "variant", "64", "Target variant for the native layout.")
	fl.StringVar(&f.libDir, "lib-dir", "dll", "Library directory under bin/<os>/<variant> for the native layout.")
	fl.StringVar(&f.libExt, "lib-ext", ".dll", "Library file extension for the native layout.")
	fl.StringArrayVarP(&f.manifests, "manifest", "m", nil, "Manifest file (.hcl, .yaml, .yml) or directory. Repeatable; replaces --layout.")
	fl.StringVar(&f.root, "root", "", "Install root. Defaults to the parent of the executable's directory.")
	fl.StringVar(&f.sizeUnit, "size-unit", "", "Override the manifest's size unit. Options: 'mb', 'bytes'.")
	fl.StringVar(&f.report, "report", "", "Write a JSON report to this file.")
	fl.BoolVar(&f.noColor, "no-color", false, "Disable coloured status tags.")
	fl.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	fl.StringVar(&f.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	return cmd
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var config *app.Config
	cmd := newRootCommand(func(c *app.Config) { config = c })
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if config == nil {
		// --help or --version was handled by cobra.
		return nil, true, nil
	}
	return config, false, nil
}

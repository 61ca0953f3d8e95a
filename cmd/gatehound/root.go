package gatehound

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagJSON          bool
	flagSARIF         bool
	flagNoColor       bool
	flagVerbose       bool
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the gatehound CLI.
var rootCmd = &cobra.Command{
	Use:           "gatehound",
	Short:         "Run security scanners and gate on the result",
	Long:          "Gatehound runs trivy, semgrep and gitleaks against a repository, normalizes and triages their findings, and turns them into a deterministic pass/fail verdict with an auditable run manifest.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the gatehound CLI. It should be called by the main package.
// Policy verdicts exit through their own codes (0 pass, 1 violation,
// 2 scan error); anything else here is an operational error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "structured debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}

// newLogger builds the CLI logger: silent by default, debug-level console
// output on stderr with --verbose.
func newLogger() *zap.SugaredLogger {
	if !flagVerbose {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}

// Package cli provides the stepref command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stepref/internal/core/ports/driving"
	"github.com/custodia-labs/stepref/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var verbose bool

// Services injected by main.
var (
	settingsService driving.SettingsService
	runService      driving.RunService
	configPath      string
)

var rootCmd = &cobra.Command{
	Use:   "stepref",
	Short: "Resolve external references of STEP AP242 assemblies",
	Long: `stepref loads a STEP AP242 master document, follows its external document
references to the files they name, and reports which references loaded,
which are waiting and which could not be resolved.

Resolution runs are recorded so their results can be inspected later.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles the driving ports the commands use.
type Services struct {
	Settings   driving.SettingsService
	Runs       driving.RunService
	ConfigPath string
}

// SetServices injects the services used by commands.
func SetServices(s Services) {
	settingsService = s.Settings
	runService = s.Runs
	configPath = s.ConfigPath
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package cli

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the file formats it loads",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("stepref version %s (%s)\n", version, runtime.Version())

		// Configured values win; broken settings still show the built-in ones.
		schemas, extensions := domain.DefaultSchemas, domain.DefaultExtensions
		if settingsService != nil {
			if s, err := settingsService.Get(); err == nil {
				schemas, extensions = s.Decoder.Schemas, s.Policy.Extensions
			}
		}
		cmd.Printf("Schemas:    %s\n", strings.Join(schemas, ", "))
		cmd.Printf("Extensions: %s\n", strings.Join(extensions, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var retryOpts resolveOptions

var retryCmd = &cobra.Command{
	Use:   "retry [run-id]",
	Short: "Resolve a recorded run again and wait for missing files",
	Long: `Resolves the master document of a recorded run again. Missing files are
deferred instead of failing, and stepref waits for them to appear until
none remain or it is interrupted. Without an ID the latest run is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRetry,
}

func init() {
	addResolveFlags(retryCmd, &retryOpts)
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	previous, err := loadRun(cmd.Context(), args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := retryOpts
	opts.watch = true
	opts.deferMissing = true
	return resolveAndReport(ctx, cmd, rootPath(previous.Root), opts)
}

// rootPath strips the mechanism tag from a recorded root location.
func rootPath(root string) string {
	if mech, path, ok := strings.Cut(root, ":"); ok && len(mech) > 1 {
		return path
	}
	return root
}

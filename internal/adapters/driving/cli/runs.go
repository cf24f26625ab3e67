package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/report"
)

var runsFormat string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded resolution runs",
	RunE:  runRunsList,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete recorded runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.Flags().StringVarP(&runsFormat, "format", "f", "text", "output format: text, json or yaml")
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}
	out, err := reportOptions(cmd, runsFormat, false)
	if err != nil {
		return err
	}
	runs, err := runService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return report.WriteRuns(cmd.OutOrStdout(), runs, out)
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}
	for _, id := range args {
		err := runService.Delete(cmd.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
		cmd.Printf("Deleted run %s\n", id)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/report"
)

var (
	statusFormat string
	statusDetail bool
	linksFormat  string
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show the reference tree of a recorded run",
	Long:  `Shows the node tree of a recorded run. Without an ID the latest run is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var linksCmd = &cobra.Command{
	Use:   "links [run-id]",
	Short: "Show the shape linkages of a recorded run",
	Long: `Lists shape representations of master documents paired with their
counterparts in detail documents. Without an ID the latest run is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLinks,
}

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "output format: text, json or yaml")
	statusCmd.Flags().BoolVar(&statusDetail, "detail", false, "show locations, document types and versions")
	linksCmd.Flags().StringVarP(&linksFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(linksCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out, err := reportOptions(cmd, statusFormat, statusDetail)
	if err != nil {
		return err
	}
	run, err := loadRun(cmd.Context(), args)
	if err != nil {
		return err
	}
	return report.WriteRun(cmd.OutOrStdout(), run, out)
}

func runLinks(cmd *cobra.Command, args []string) error {
	out, err := reportOptions(cmd, linksFormat, false)
	if err != nil {
		return err
	}
	run, err := loadRun(cmd.Context(), args)
	if err != nil {
		return err
	}
	return report.WriteLinkages(cmd.OutOrStdout(), run, out)
}

// loadRun fetches the run named by args, or the latest one.
func loadRun(ctx context.Context, args []string) (*domain.Run, error) {
	if runService == nil {
		return nil, errors.New("run service not configured")
	}
	var id string
	if len(args) > 0 {
		id = args[0]
	}
	run, err := runService.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		if id == "" {
			return nil, errors.New("no runs recorded yet; run 'stepref resolve <file>' first")
		}
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

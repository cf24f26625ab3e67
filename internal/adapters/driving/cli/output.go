package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/stepref/internal/report"
)

// reportOptions parses the format flag and enables styling only when
// text goes straight to a terminal.
func reportOptions(cmd *cobra.Command, format string, detail bool) (report.Options, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Format: f,
		Styled: f == report.FormatText && isTerminal(cmd.OutOrStdout()),
		Detail: detail,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

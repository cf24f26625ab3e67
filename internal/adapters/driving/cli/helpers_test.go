package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stepref/internal/core/services"
)

// testEnv holds the in-memory services wired into the commands.
type testEnv struct {
	config *memory.ConfigStore
	runs   *memory.RunStore
}

// setupTestServices wires in-memory services and restores the previous ones on cleanup.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	oldSettings, oldRuns, oldPath := settingsService, runService, configPath

	env := &testEnv{config: memory.NewConfigStore(), runs: memory.NewRunStore()}
	SetServices(Services{
		Settings:   services.NewSettingsService(env.config),
		Runs:       services.NewRunService(env.runs, uuid.NewString),
		ConfigPath: "/home/test/.stepref/config.toml",
	})

	t.Cleanup(func() {
		settingsService, runService, configPath = oldSettings, oldRuns, oldPath
	})
	return env
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	resetContexts(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetFlags restores flag defaults left over from earlier executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// resetContexts clears contexts cobra kept on subcommands from earlier executions,
// so each execution's ctx reaches the command it runs.
func resetContexts(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		c.SetContext(nil)
		resetContexts(c)
	}
}

// writeStep writes an exchange file referencing refs by file name only.
func writeStep(t *testing.T, dir, name string, refs ...string) string {
	t.Helper()
	lines := []string{"#1=DOCUMENT_TYPE('geometry');"}
	for i, ref := range refs {
		lines = append(lines, fmt.Sprintf("#%d=DOCUMENT_FILE('%s','','',#1,'','');", 10+i, ref))
	}
	text := "ISO-10303-21;\nHEADER;\nFILE_DESCRIPTION((''),'2;1');\n" +
		"FILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));\nENDSEC;\nDATA;\n" +
		strings.Join(lines, "\n") + "\nENDSEC;\nEND-ISO-10303-21;\n"

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

func saveRun(t *testing.T, env *testEnv, id string, started time.Time) *domain.Run {
	t.Helper()
	run := &domain.Run{
		ID:         id,
		Root:       "URL:/cad/assembly.stp",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Nodes: []domain.NodeRecord{
			{Name: "assembly.stp", Status: domain.StatusLoaded, Location: "URL:/cad/assembly.stp", Entities: 30},
			{Name: "bracket.stp", Parent: "assembly.stp", Depth: 1, Status: domain.StatusLoaded,
				Location: "URL:/cad/bracket.stp", Entities: 12, DocumentType: "digital", Version: "3"},
		},
		Linkages: []domain.LinkageRecord{{
			Master: domain.EntityHandle{Model: "assembly.stp", ID: 8},
			Detail: domain.EntityHandle{Model: "bracket.stp", ID: 8},
			Key:    domain.ShapeKey{RepresentationName: "BODY", ProductName: "Bracket", ProductID: "BRK-1"},
		}},
	}
	require.NoError(t, env.runs.Save(context.Background(), run))
	return run
}

func TestStatusCmd_Latest(t *testing.T) {
	env := setupTestServices(t)
	saveRun(t, env, "old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	saveRun(t, env, "new", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Run new")
	assert.Contains(t, out, "bracket.stp  loaded")
	assert.NotContains(t, out, "version 3")
}

func TestStatusCmd_ByIDWithDetail(t *testing.T) {
	env := setupTestServices(t)
	saveRun(t, env, "old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	saveRun(t, env, "new", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	out, err := execute(t, "status", "--detail", "old")

	require.NoError(t, err)
	assert.Contains(t, out, "Run old")
	assert.Contains(t, out, "type digital, version 3")
}

func TestStatusCmd_YAML(t *testing.T) {
	env := setupTestServices(t)
	saveRun(t, env, "r1", time.Now())

	out, err := execute(t, "status", "-f", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "id: r1")
	assert.Contains(t, out, "document_type: digital")
}

func TestStatusCmd_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no runs recorded yet")

	_, err = execute(t, "status", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run nope not found")
}

func TestStatusCmd_NoRunService(t *testing.T) {
	setupTestServices(t)
	runService = nil

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run service not configured")
}

func TestLinksCmd(t *testing.T) {
	env := setupTestServices(t)
	saveRun(t, env, "r1", time.Now())

	out, err := execute(t, "links")

	require.NoError(t, err)
	assert.Contains(t, out, "assembly.stp#8 <-> bracket.stp#8")

	out, err = execute(t, "links", "--format", "json", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, `"product_id": "BRK-1"`)
}

func TestRunsCmd_ListAndDelete(t *testing.T) {
	env := setupTestServices(t)
	saveRun(t, env, "r1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	saveRun(t, env, "r2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	out, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "r2")

	out, err = execute(t, "runs", "delete", "r1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run r1")

	_, err = execute(t, "runs", "delete", "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run r1 not found")

	runs, err := env.runs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r2", runs[0].ID)
}

func TestRunsCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "runs")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestRetryCmd_ResolvesLatestRoot(t *testing.T) {
	env := setupTestServices(t)
	dir := t.TempDir()
	master := writeStep(t, dir, "assembly.stp", "part1.stp")
	writeStep(t, dir, "part1.stp")
	require.NoError(t, env.runs.Save(context.Background(), &domain.Run{
		ID:        "previous",
		Root:      "URL:" + master,
		StartedAt: time.Now(),
	}))

	out, err := execute(t, "retry")

	require.NoError(t, err)
	assert.Contains(t, out, "part1.stp  loaded")
	assert.NotContains(t, out, "Waiting for")

	runs, err := env.runs.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRootPath(t *testing.T) {
	assert.Equal(t, "/cad/assembly.stp", rootPath("URL:/cad/assembly.stp"))
	assert.Equal(t, `C:\cad\assembly.stp`, rootPath(`URL:C:\cad\assembly.stp`))
	assert.Equal(t, "assembly.stp", rootPath("assembly.stp"))
}

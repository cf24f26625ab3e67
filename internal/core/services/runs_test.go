package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stepref/internal/core/domain"
)

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestRunService_Record(t *testing.T) {
	f := newFixture(t, "/cad/assembly.stp", map[string]string{
		"/cad/assembly.stp": stepFile("part1.stp", "drawing.pdf"),
		"/cad/part1.stp":    stepFile(),
	})
	f.decode(t)

	store := memory.NewRunStore()
	service := NewRunService(store, fixedID("run-1"))
	finished := time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC)
	service.now = func() time.Time { return finished }
	started := finished.Add(-5 * time.Second)

	run, err := service.Record(context.Background(), f.loader, nil, started)

	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "URL:/cad/assembly.stp", run.Root)
	assert.Equal(t, started, run.StartedAt)
	assert.Equal(t, finished, run.FinishedAt)
	require.Len(t, run.Nodes, 3)
	assert.Equal(t, "assembly.stp", run.Nodes[0].Name)
	assert.Equal(t, domain.StatusLoaded, run.Nodes[0].Status)
	assert.Positive(t, run.Nodes[0].Entities)
	assert.Equal(t, "assembly.stp", run.Nodes[1].Parent)
	assert.Equal(t, map[domain.StatusKind]int{
		domain.StatusLoaded:           2,
		domain.StatusForeignReference: 1,
	}, run.Counts())

	stored, err := service.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, run, stored)
}

func TestRunService_Record_NilLoader(t *testing.T) {
	_, err := NewRunService(memory.NewRunStore(), fixedID("x")).Record(context.Background(), nil, nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunService_WithoutStore(t *testing.T) {
	f := newFixture(t, "/cad/assembly.stp", map[string]string{})
	f.decode(t)
	service := NewRunService(nil, fixedID("run-1"))
	ctx := context.Background()

	run, err := service.Record(ctx, f.loader, nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, run.Linkages)
	assert.Equal(t, domain.StatusFailed, run.Nodes[0].Status)
	assert.Contains(t, run.Nodes[0].Reason, "reference not found")

	_, err = service.Get(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	runs, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.ErrorIs(t, service.Delete(ctx, "run-1"), domain.ErrNotFound)
}

func TestRunService_ListAndDelete(t *testing.T) {
	f := newFixture(t, "/cad/assembly.stp", map[string]string{})
	f.decode(t)
	ctx := context.Background()
	store := memory.NewRunStore()

	ids := []string{"a", "b"}
	for i, id := range ids {
		service := NewRunService(store, fixedID(id))
		_, err := service.Record(ctx, f.loader, nil, time.Unix(int64(i), 0))
		require.NoError(t, err)
	}

	service := NewRunService(store, fixedID("unused"))
	runs, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)

	assert.ErrorIs(t, service.Delete(ctx, ""), domain.ErrInvalidInput)
	require.NoError(t, service.Delete(ctx, "b"))

	latest, err := service.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "a", latest.ID)
}

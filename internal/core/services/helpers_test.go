package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/ap242"
	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/decoders/p21"
)

const testSchema = "AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF"

// stepFile builds an exchange file whose document files reference refs by id only,
// so the loader inherits path and mechanism from the referencing file.
func stepFile(refs ...string) string {
	var lines []string
	lines = append(lines, "#1=DOCUMENT_TYPE('geometry');")
	for i, ref := range refs {
		lines = append(lines, fmt.Sprintf("#%d=DOCUMENT_FILE('%s','','',#1,'','');", 10+i, ref))
	}
	return stepWithSchema(testSchema, lines...)
}

func stepWithSchema(schema string, lines ...string) string {
	return "ISO-10303-21;\nHEADER;\nFILE_DESCRIPTION((''),'2;1');\n" +
		"FILE_SCHEMA(('" + schema + "'));\nENDSEC;\nDATA;\n" +
		strings.Join(lines, "\n") + "\nENDSEC;\nEND-ISO-10303-21;\n"
}

// memPolicy is the default policy over an in-memory file tree.
type memPolicy struct {
	*DefaultPolicy

	mu       sync.Mutex
	files    map[string]string
	deferred map[string]bool
	opened   map[string]int
}

func newMemPolicy(files map[string]string) *memPolicy {
	return &memPolicy{
		DefaultPolicy: NewDefaultPolicy(domain.MechanismURL),
		files:         files,
		deferred:      make(map[string]bool),
		opened:        make(map[string]int),
	}
}

func (p *memPolicy) setDeferred(name string, deferred bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferred[name] = deferred
}

func (p *memPolicy) Disposition(loc domain.DocumentSourceLocation) driven.Disposition {
	p.mu.Lock()
	later := p.deferred[loc.FileName]
	p.mu.Unlock()
	if later {
		return driven.DispositionDefer
	}
	return p.DefaultPolicy.Disposition(loc)
}

func (p *memPolicy) OpenStream(_ context.Context, loc domain.DocumentSourceLocation) (io.ReadCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	text, ok := p.files[loc.FullPath()]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", loc.FullPath(), os.ErrNotExist)
	}
	p.opened[loc.FullPath()]++
	return io.NopCloser(strings.NewReader(text)), nil
}

// countingDecoder counts decode calls per document name.
type countingDecoder struct {
	inner driven.Decoder
	calls map[string]int
}

func (d *countingDecoder) Decode(ctx context.Context, name string, stream io.Reader) (*domain.ExchangeStructure, error) {
	d.calls[name]++
	return d.inner.Decode(ctx, name, stream)
}

// recordingMonitor captures monitor callbacks as strings.
type recordingMonitor struct {
	events []string

	onCompleted func(*domain.ReferenceNode)
}

func (m *recordingMonitor) StartedLoading(n *domain.ReferenceNode) {
	m.events = append(m.events, "start "+n.Name)
}

func (m *recordingMonitor) CompletedLoading(n *domain.ReferenceNode) {
	m.events = append(m.events, "done "+n.Name+" "+n.Status().Kind().String())
	if m.onCompleted != nil {
		m.onCompleted(n)
	}
}

func (m *recordingMonitor) Identified(children []*domain.ReferenceNode, parent *domain.ReferenceNode) {
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name
	}
	m.events = append(m.events, fmt.Sprintf("identified %s [%s]", parent.Name, strings.Join(names, " ")))
}

// fixture bundles a loader with its collaborators.
type fixture struct {
	repo    *ap242.Repository
	policy  *memPolicy
	decoder *countingDecoder
	monitor *recordingMonitor
	loader  *Loader
}

// newFixture creates a loader rooted at start over files.
func newFixture(t *testing.T, start string, files map[string]string, schemas ...string) *fixture {
	t.Helper()
	repo := ap242.NewRepository()
	f := &fixture{
		repo:    repo,
		policy:  newMemPolicy(files),
		decoder: &countingDecoder{inner: p21.NewDecoder(repo), calls: make(map[string]int)},
		monitor: &recordingMonitor{},
	}
	loader, err := NewLoader(LoaderConfig{
		Repository: repo,
		Decoder:    f.decoder,
		Schemas:    schemas,
		Start:      domain.LocationFromPath(start),
		Monitor:    f.monitor,
		Policy:     f.policy,
	})
	require.NoError(t, err)
	f.loader = loader
	return f
}

func (f *fixture) decode(t *testing.T) {
	t.Helper()
	require.NoError(t, f.loader.Decode(context.Background()))
}

func (f *fixture) node(t *testing.T, name string) *domain.ReferenceNode {
	t.Helper()
	n, ok := f.loader.Node(name)
	require.True(t, ok, "node %s", name)
	return n
}

// kinds maps each canonical name to its status kind.
func kinds(l *Loader) map[string]domain.StatusKind {
	out := make(map[string]domain.StatusKind)
	for name, s := range l.Statuses() {
		out[name] = s.Kind()
	}
	return out
}

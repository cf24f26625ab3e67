package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/ports/driving"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure Loader implements the interface.
var _ driving.ReferenceLoader = (*Loader)(nil)

// LoaderConfig holds the collaborators of a Loader.
type LoaderConfig struct {
	// Repository receives decoded models and provides temporary views.
	Repository driven.Repository

	// Decoder turns streams into exchange structures.
	Decoder driven.Decoder

	// Schemas lists recognised schema names. Empty accepts any schema.
	Schemas []string

	// Start is the location of the master document.
	Start domain.DocumentSourceLocation

	// Monitor is optional.
	Monitor driven.ActivityMonitor

	// Policy is optional; DefaultPolicy is used when nil.
	Policy driven.DispositionPolicy
}

// Loader resolves the external reference graph of one master document.
// Nodes are processed one at a time; the decoder is never called concurrently.
// Monitor callbacks run while the loader is locked and must not call back into it.
type Loader struct {
	repo    driven.Repository
	decoder driven.Decoder
	policy  driven.DispositionPolicy
	monitor driven.ActivityMonitor
	schemas []string

	mu       sync.RWMutex
	root     *domain.ReferenceNode
	nodes    []*domain.ReferenceNode
	primary  map[string]*domain.ReferenceNode
	cache    map[string]*domain.ExchangeStructure
	children map[*domain.ReferenceNode][]*domain.ReferenceNode
}

// NewLoader creates a loader seeded with the root node for cfg.Start.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.Repository == nil || cfg.Decoder == nil {
		return nil, fmt.Errorf("%w: repository and decoder are required", domain.ErrInvalidInput)
	}
	if cfg.Start.FileName == "" {
		return nil, fmt.Errorf("%w: start location has no file name", domain.ErrInvalidInput)
	}
	policy := cfg.Policy
	if policy == nil {
		policy = NewDefaultPolicy(domain.MechanismURL)
	}

	l := &Loader{
		repo:     cfg.Repository,
		decoder:  cfg.Decoder,
		policy:   policy,
		monitor:  cfg.Monitor,
		schemas:  cfg.Schemas,
		primary:  make(map[string]*domain.ReferenceNode),
		cache:    make(map[string]*domain.ExchangeStructure),
		children: make(map[*domain.ReferenceNode][]*domain.ReferenceNode),
	}
	l.root = domain.NewRootNode(cfg.Start)
	l.add(l.root)
	return l, nil
}

// Decode runs the loading loop until a scan makes no progress.
// Deferred nodes are re-examined; every other settled node is left alone.
func (l *Loader) Decode(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reopenDeferred(nil)
	return l.run(ctx)
}

// Retry re-examines deferred nodes, limited to names when any are given.
func (l *Loader) Retry(ctx context.Context, names ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reopenDeferred(names)
	return l.run(ctx)
}

// reopenDeferred moves deferred nodes back to pending.
func (l *Loader) reopenDeferred(names []string) {
	for _, n := range l.nodes {
		if n.Status().Kind() != domain.StatusDeferred {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, n.Name) {
			continue
		}
		l.transition(n, domain.Pending())
	}
}

// run is the fixed-point loop. Caller must hold the write lock.
func (l *Loader) run(ctx context.Context) error {
	for pass := 1; ; pass++ {
		progressed := false

		// Children appended during the scan are visited in the same scan.
		for i := 0; i < len(l.nodes); i++ {
			if err := ctx.Err(); err != nil {
				l.cancelPending()
				return err
			}
			n := l.nodes[i]
			if n.Status().Kind() != domain.StatusPending {
				continue
			}
			changed, err := l.step(ctx, n)
			if err != nil {
				l.cancelPending()
				return err
			}
			if changed {
				progressed = true
			}
		}

		logger.Debug("Scan %d complete: %d nodes, progress=%t", pass, len(l.nodes), progressed)
		if !progressed {
			return nil
		}
	}
}

// step advances one pending node. Returns true if the node changed status.
// An error means ctx ended while the node was loading; the node stays pending.
func (l *Loader) step(ctx context.Context, n *domain.ReferenceNode) (bool, error) {
	if content, ok := l.cache[n.Name]; ok {
		logger.Debug("Reusing decoded %s", n.Name)
		l.transition(n, domain.Loaded(content))
		return true, nil
	}

	if holder := l.primary[n.Name]; holder != nil && holder != n {
		// Another node owns this name; follow its outcome instead of resolving again.
		if holder.Status().Kind() == domain.StatusPending {
			return false, nil
		}
		l.transition(n, holder.Status())
		return true, nil
	}

	return l.load(ctx, n)
}

// load evaluates the node's candidate locations in order.
func (l *Loader) load(ctx context.Context, n *domain.ReferenceNode) (bool, error) {
	if l.monitor != nil {
		l.monitor.StartedLoading(n)
		defer l.monitor.CompletedLoading(n)
	}

	for _, loc := range n.Locations {
		switch l.policy.Disposition(loc) {
		case driven.DispositionLoad:
			content, err := l.fetch(ctx, n, loc)
			if err != nil {
				if cause := interruption(ctx, err); cause != nil {
					logger.Debug("Loading %s interrupted: %v", n.Name, err)
					return false, cause
				}
				logger.Debug("Failed to load %s: %v", n.Name, err)
				l.transition(n, domain.Failed(err))
				return true, nil
			}
			l.cache[n.Name] = content
			n.Locations = []domain.DocumentSourceLocation{loc}
			l.transition(n, domain.Loaded(content))
			logger.Debug("Loaded %s from %s (%d entities)", n.Name, loc, content.EntityCount())
			l.expand(n, content)
			return true, nil

		case driven.DispositionDefer:
			logger.Debug("Deferring %s at %s", n.Name, loc)
			l.transition(n, domain.Deferred())
			return true, nil

		case driven.DispositionDecline:
			continue
		}
	}

	logger.Debug("No location of %s is resolvable here", n.Name)
	l.transition(n, domain.ForeignReference())
	return true, nil
}

// interruption returns the cancellation behind a failed load, or nil when the
// failure belongs to the node.
func interruption(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if IsCancelled(err) {
		return err
	}
	return nil
}

// fetch opens and decodes one location.
func (l *Loader) fetch(ctx context.Context, n *domain.ReferenceNode, loc domain.DocumentSourceLocation) (*domain.ExchangeStructure, error) {
	stream, err := l.policy.OpenStream(ctx, loc)
	if err != nil {
		return nil, &domain.LoadError{Kind: domain.LoadErrorReferenceNotFound, Location: loc, Err: err}
	}
	defer stream.Close()

	content, err := l.decoder.Decode(ctx, n.Name, stream)
	if err != nil {
		return nil, &domain.LoadError{
			Kind:       domain.LoadErrorDecoder,
			Location:   loc,
			Diagnostic: driven.DiagnosticOf(err),
			Err:        err,
		}
	}
	if err := l.checkSchemas(content); err != nil {
		names := make([]string, 0, len(content.Models))
		for _, m := range content.Models {
			names = append(names, m.Name)
		}
		l.repo.RemoveModels(names...)
		return nil, &domain.LoadError{Kind: domain.LoadErrorDecoder, Location: loc, Err: err}
	}
	return content, nil
}

// checkSchemas rejects content whose models conform to no recognised schema.
func (l *Loader) checkSchemas(content *domain.ExchangeStructure) error {
	if len(l.schemas) == 0 {
		return nil
	}
	for _, m := range content.Models {
		if !l.recognised(m.Schema) {
			return fmt.Errorf("%w: %q in model %s", domain.ErrUnsupportedSchema, m.Schema, m.Name)
		}
	}
	return nil
}

func (l *Loader) recognised(schema string) bool {
	s := strings.ToUpper(schema)
	for _, known := range l.schemas {
		if strings.HasPrefix(s, strings.ToUpper(known)) {
			return true
		}
	}
	return false
}

// expand discovers the document files referenced by a freshly decoded node
// and adds one child per distinct canonical name.
func (l *Loader) expand(parent *domain.ReferenceNode, content *domain.ExchangeStructure) {
	view, err := l.repo.CreateSchemaInstance(parent.Name + ".TEMP")
	if err != nil {
		logger.Warn("Cannot inspect %s for references: %v", parent.Name, err)
		return
	}
	defer func() {
		if err := view.Close(); err != nil {
			logger.Debug("Failed to close view of %s: %v", parent.Name, err)
		}
	}()

	if err := view.Add(content.Models...); err != nil {
		logger.Warn("Cannot inspect %s for references: %v", parent.Name, err)
		return
	}
	view.SetReadOnly()

	parentLoc := parent.PrimaryLocation()
	seen := make(map[string]bool)
	var found []*domain.ReferenceNode

	for _, docFile := range view.DocumentFiles() {
		locs, err := view.FileLocations(docFile)
		if err != nil {
			// A loosely conforming document skips the relationship, not the scan.
			logger.Warn("Skipping document file %s: %v", docFile, err)
			continue
		}
		normalised := make([]domain.DocumentSourceLocation, 0, len(locs))
		for _, loc := range locs {
			loc = l.policy.Normalize(loc, parentLoc)
			if loc.FileName == "" {
				continue
			}
			normalised = append(normalised, loc)
		}
		if len(normalised) == 0 || seen[normalised[0].FileName] {
			continue
		}
		seen[normalised[0].FileName] = true

		child, err := domain.NewChildNode(parent, docFile, normalised)
		if err != nil {
			logger.Warn("Skipping document file %s: %v", docFile, err)
			continue
		}
		l.add(child)
		found = append(found, child)
	}

	l.children[parent] = found
	logger.Debug("Identified %d references in %s", len(found), parent.Name)
	if l.monitor != nil {
		l.monitor.Identified(found, parent)
	}
}

// add registers a node; the first node bearing a name holds it.
func (l *Loader) add(n *domain.ReferenceNode) {
	l.nodes = append(l.nodes, n)
	if _, exists := l.primary[n.Name]; !exists {
		l.primary[n.Name] = n
	}
}

// cancelPending marks every still-pending node cancelled.
func (l *Loader) cancelPending() {
	for _, n := range l.nodes {
		if n.Status().Kind() == domain.StatusPending {
			l.transition(n, domain.Cancelled())
		}
	}
}

func (l *Loader) transition(n *domain.ReferenceNode, next domain.Status) {
	if err := n.Transition(next); err != nil {
		// Only reachable through a loader bug; keep the current status.
		logger.Warn("Ignored transition: %v", err)
	}
}

// Root returns the node of the starting document.
func (l *Loader) Root() *domain.ReferenceNode {
	return l.root
}

// Nodes returns the node collection keyed by canonical name.
func (l *Loader) Nodes() map[string]*domain.ReferenceNode {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]*domain.ReferenceNode, len(l.primary))
	for name, n := range l.primary {
		out[name] = n
	}
	return out
}

// AllNodes returns every node in creation order.
func (l *Loader) AllNodes() []*domain.ReferenceNode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.nodes)
}

// Node looks up the node holding a canonical name.
func (l *Loader) Node(name string) (*domain.ReferenceNode, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.primary[name]
	return n, ok
}

// Children returns the nodes discovered from parent.
func (l *Loader) Children(parent *domain.ReferenceNode) []*domain.ReferenceNode {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.children[parent])
}

// Models returns the union of decoded models across loaded nodes.
func (l *Loader) Models() []*domain.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[*domain.Model]bool)
	var models []*domain.Model
	for _, n := range l.nodes {
		content, ok := n.Content()
		if !ok {
			continue
		}
		for _, m := range content.Models {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}
	return models
}

// Statuses returns each canonical name's status.
func (l *Loader) Statuses() map[string]domain.Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]domain.Status, len(l.primary))
	for name, n := range l.primary {
		out[name] = n.Status()
	}
	return out
}

// Deferred lists the locations of deferred nodes, one per canonical name.
func (l *Loader) Deferred() []domain.DocumentSourceLocation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.DocumentSourceLocation
	for _, n := range l.nodes {
		if n.Status().Kind() == domain.StatusDeferred && l.primary[n.Name] == n {
			out = append(out, n.Locations...)
		}
	}
	return out
}

// Describe reads the representation type and version of the document file
// that produced n.
func (l *Loader) Describe(n *domain.ReferenceNode) (domain.DocumentInfo, error) {
	var info domain.DocumentInfo
	if n == nil || n.Parent == nil || n.Origin == nil {
		return info, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	content, ok := n.Parent.Content()
	if !ok {
		return info, fmt.Errorf("%w: %s", domain.ErrNotLoaded, n.Parent.Name)
	}

	// Readers share the lock, so each call needs its own view.
	view, err := l.repo.CreateSchemaInstance(scopedViewName(n.Parent.Name, "DESCRIBE"))
	if err != nil {
		return info, fmt.Errorf("create view of %s: %w", n.Parent.Name, err)
	}
	defer func() {
		if err := view.Close(); err != nil {
			logger.Debug("Failed to close view of %s: %v", n.Parent.Name, err)
		}
	}()
	if err := view.Add(content.Models...); err != nil {
		return info, fmt.Errorf("populate view of %s: %w", n.Parent.Name, err)
	}
	view.SetReadOnly()

	if info.Type, err = view.RepresentationType(*n.Origin); err != nil {
		return info, err
	}
	if info.Version, err = view.Version(*n.Origin); err != nil {
		return info, err
	}
	return info, nil
}

var viewSeq atomic.Uint64

// scopedViewName returns a view name no other open view of base can hold.
func scopedViewName(base, purpose string) string {
	return fmt.Sprintf("%s.%s.%d", base, purpose, viewSeq.Add(1))
}

// IsCancelled reports whether err is the cancellation returned by Decode or Retry.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

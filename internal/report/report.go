package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/tree"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/stepref/internal/core/domain"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json or yaml)", domain.ErrInvalidInput, s)
	}
}

// Options controls rendering.
type Options struct {
	Format Format

	// Styled enables colours in text output.
	Styled bool

	// Detail adds locations, document types and versions to text output.
	Detail bool
}

func (o Options) styles() *Styles {
	if o.Styled {
		return NewStyles(nil)
	}
	return plainStyles()
}

// statusOrder fixes the order of the summary line.
var statusOrder = []domain.StatusKind{
	domain.StatusLoaded,
	domain.StatusDeferred,
	domain.StatusForeignReference,
	domain.StatusFailed,
	domain.StatusCancelled,
	domain.StatusPending,
}

// WriteRun renders a run with its node tree.
func WriteRun(w io.Writer, run *domain.Run, opts Options) error {
	if run == nil {
		return domain.ErrInvalidInput
	}
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, toRunDoc(run, true))
	case FormatYAML:
		return writeYAML(w, toRunDoc(run, true))
	}

	s := opts.styles()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.Title.Render("Run"), run.ID)
	fmt.Fprintf(&b, "%s %s\n", s.Muted.Render("Root:"), run.Root)
	fmt.Fprintf(&b, "%s %s (%s)\n", s.Muted.Render("Started:"),
		run.StartedAt.Local().Format(time.DateTime), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	b.WriteString("\n")
	if t := nodeTree(run.Nodes, s, opts.Detail); t != nil {
		b.WriteString(t.String())
		b.WriteString("\n\n")
	}
	b.WriteString(summary(run))
	b.WriteString("\n")
	if len(run.Linkages) > 0 {
		fmt.Fprintf(&b, "%d linkage(s)\n", len(run.Linkages))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLinkages renders the linkages of a run.
func WriteLinkages(w io.Writer, run *domain.Run, opts Options) error {
	if run == nil {
		return domain.ErrInvalidInput
	}
	docs := toLinkageDocs(run.Linkages)
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatYAML:
		return writeYAML(w, docs)
	}

	if len(run.Linkages) == 0 {
		_, err := fmt.Fprintln(w, "No linkages found.")
		return err
	}
	s := opts.styles()
	var b strings.Builder
	for _, l := range run.Linkages {
		fmt.Fprintf(&b, "%s <-> %s\n", s.Name.Render(l.Master.String()), s.Name.Render(l.Detail.String()))
		fmt.Fprintf(&b, "    %s %s, %s %s (%s)\n",
			s.Muted.Render("shape"), l.Key.RepresentationName,
			s.Muted.Render("product"), l.Key.ProductName, l.Key.ProductID)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRuns renders a list of runs without their nodes.
func WriteRuns(w io.Writer, runs []domain.Run, opts Options) error {
	docs := make([]runDoc, len(runs))
	for i := range runs {
		docs[i] = toRunDoc(&runs[i], false)
	}
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatYAML:
		return writeYAML(w, docs)
	}

	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	s := opts.styles()
	var b strings.Builder
	for i := range runs {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			s.Name.Render(runs[i].ID),
			s.Muted.Render(runs[i].StartedAt.Local().Format(time.DateTime)),
			runs[i].Root)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// nodeTree builds the node hierarchy. Each record hangs under the first
// record carrying its parent's name, which always precedes it.
func nodeTree(nodes []domain.NodeRecord, s *Styles, detail bool) *tree.Tree {
	if len(nodes) == 0 {
		return nil
	}
	first := make(map[string]int, len(nodes))
	children := make(map[int][]int)
	var roots []int
	for i, n := range nodes {
		if _, seen := first[n.Name]; !seen {
			first[n.Name] = i
		}
		p, ok := first[n.Parent]
		if n.Parent == "" || !ok || p >= i {
			roots = append(roots, i)
			continue
		}
		children[p] = append(children[p], i)
	}

	var build func(i int) *tree.Tree
	build = func(i int) *tree.Tree {
		t := tree.Root(nodeLine(nodes[i], s, detail))
		for _, c := range children[i] {
			if len(children[c]) == 0 {
				t.Child(nodeLine(nodes[c], s, detail))
				continue
			}
			t.Child(build(c))
		}
		return t
	}

	if len(roots) == 1 {
		return build(roots[0]).EnumeratorStyle(s.Muted)
	}
	t := tree.New()
	for _, r := range roots {
		t.Child(build(r))
	}
	return t.EnumeratorStyle(s.Muted)
}

func nodeLine(n domain.NodeRecord, s *Styles, detail bool) string {
	var b strings.Builder
	b.WriteString(s.Name.Render(n.Name))
	b.WriteString("  ")
	status := n.Status.String()
	if n.Reason != "" {
		status += ": " + n.Reason
	}
	b.WriteString(s.Status(n.Status).Render(status))
	if n.Entities > 0 {
		b.WriteString(s.Muted.Render(fmt.Sprintf("  %d entities", n.Entities)))
	}
	if !detail {
		return b.String()
	}

	var extra []string
	if n.DocumentType != "" {
		extra = append(extra, "type "+n.DocumentType)
	}
	if n.Version != "" {
		extra = append(extra, "version "+n.Version)
	}
	if n.Location != "" {
		extra = append(extra, "at "+n.Location)
	}
	if len(extra) > 0 {
		b.WriteString(s.Muted.Render("  [" + strings.Join(extra, ", ") + "]"))
	}
	return b.String()
}

func summary(run *domain.Run) string {
	counts := run.Counts()
	parts := make([]string, 0, len(counts))
	for _, k := range statusOrder {
		if c := counts[k]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, k))
		}
	}
	line := fmt.Sprintf("%d node(s)", len(run.Nodes))
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	return line
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return enc.Close()
}

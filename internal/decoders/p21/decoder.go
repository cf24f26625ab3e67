package p21

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder reads ISO 10303-21 exchange files into a shared repository.
type Decoder struct {
	repo    driven.Repository
	schemas []string
}

// NewDecoder creates a decoder that registers models in repo.
// With no schemas every FILE_SCHEMA is accepted.
func NewDecoder(repo driven.Repository, schemas ...string) *Decoder {
	return &Decoder{repo: repo, schemas: schemas}
}

// Decode parses stream and registers one model per DATA section.
// Models are named after name, suffixed with the section name when the file
// has several sections.
func (d *Decoder) Decode(ctx context.Context, name string, stream io.Reader) (*domain.ExchangeStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	f, err := parse(ctx, string(raw))
	if err != nil {
		return nil, err
	}

	x := &domain.ExchangeStructure{Source: name, Header: f.header}
	for _, s := range f.sections {
		if !d.accepts(s.schema) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSchema, s.schema)
		}
		modelName := name
		if s.name != "" && len(f.sections) > 1 {
			modelName = name + ":" + s.name
		}
		m := domain.NewModel(modelName, s.schema)
		for _, e := range s.entities {
			m.Add(e)
		}
		x.Models = append(x.Models, m)
	}

	if d.repo != nil {
		if err := d.repo.AddModels(x.Models...); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	logger.Debug("Decoded %s: %d models, %d entities", name, len(x.Models), x.EntityCount())
	return x, nil
}

func (d *Decoder) accepts(schema string) bool {
	if len(d.schemas) == 0 {
		return true
	}
	s := strings.ToUpper(schema)
	for _, known := range d.schemas {
		if strings.HasPrefix(s, strings.ToUpper(known)) {
			return true
		}
	}
	return false
}

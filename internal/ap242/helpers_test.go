package ap242

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/decoders/p21"
)

// decodeInto decodes a P21 text into repo under name.
func decodeInto(t *testing.T, repo *Repository, name, text string) *domain.ExchangeStructure {
	t.Helper()
	x, err := p21.NewDecoder(repo).Decode(context.Background(), name, strings.NewReader(text))
	require.NoError(t, err)
	return x
}

// loadFixture decodes testdata/name into repo.
func loadFixture(t *testing.T, repo *Repository, name string) *domain.ExchangeStructure {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return decodeInto(t, repo, name, string(raw))
}

// openView creates a read-only view over x, closed when the test ends.
func openView(t *testing.T, repo *Repository, name string, x *domain.ExchangeStructure) *SchemaInstance {
	t.Helper()
	v, err := repo.CreateSchemaInstance(name)
	require.NoError(t, err)
	require.NoError(t, v.Add(x.Models...))
	v.SetReadOnly()
	t.Cleanup(func() { _ = v.Close() })
	return v.(*SchemaInstance)
}

// stepText wraps data lines in a minimal exchange file.
func stepText(lines ...string) string {
	return "ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING'));\nENDSEC;\nDATA;\n" +
		strings.Join(lines, "\n") + "\nENDSEC;\nEND-ISO-10303-21;\n"
}

func h(model string, id int) domain.EntityHandle {
	return domain.EntityHandle{Model: model, ID: id}
}

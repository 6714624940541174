package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fulfillment-api/internal/domain"
)

func TestSequenceGenerator_PrefijoDesconocido(t *testing.T) {
	_, err := NewSequenceGenerator(nil).Next(context.Background(), "ZZ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepositories_GeneradorAtadoAlQuerier(t *testing.T) {
	repos := Repositories(nil)
	require.NotNil(t, repos.Sequences)
	assert.IsType(t, &SequenceGenerator{}, repos.Sequences)

	runner := NewTxRunner(nil, 0).WithSequences(fakeSequences{})
	assert.Equal(t, fakeSequences{}, runner.sequences)
}

type fakeSequences struct{}

func (fakeSequences) Next(context.Context, string) (string, error) { return "X-000001", nil }

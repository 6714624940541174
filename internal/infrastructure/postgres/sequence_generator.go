package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/domain"
)

var _ ports.SequenceGenerator = (*SequenceGenerator)(nil)

// sequenceNames prefijos con SEQUENCE propia (ver migraciones).
var sequenceNames = map[string]string{
	"WV": "code_seq_wv",
	"PT": "code_seq_pt",
	"AL": "code_seq_al",
}

// SequenceGenerator códigos por prefijo con nextval. nextval no es transaccional:
// no bloquea filas y un rollback deja hueco en la numeración.
type SequenceGenerator struct {
	q Querier
}

// NewSequenceGenerator construye el generador. Dentro de TxRunner recibe la tx,
// así la unidad de trabajo usa una sola conexión del pool.
func NewSequenceGenerator(q Querier) *SequenceGenerator {
	return &SequenceGenerator{q: q}
}

// Next devuelve el siguiente código del prefijo, p. ej. WV-000042.
func (g *SequenceGenerator) Next(ctx context.Context, prefix string) (string, error) {
	name, ok := sequenceNames[strings.ToUpper(prefix)]
	if !ok {
		return "", fmt.Errorf("prefijo de código %q sin secuencia: %w", prefix, domain.ErrInvalidInput)
	}
	var n int64
	if err := g.q.QueryRow(ctx, `SELECT nextval($1::regclass)`, name).Scan(&n); err != nil {
		return "", fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

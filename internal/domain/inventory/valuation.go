package inventory

import "github.com/shopspring/decimal"

// ExtendedCost valor de una salida: costo unitario del registro × unidades.
// Cantidades no positivas valen cero.
func ExtendedCost(unitCost decimal.Decimal, qty int) decimal.Decimal {
	if qty <= 0 || unitCost.IsNegative() {
		return decimal.Zero
	}
	return unitCost.Mul(decimal.NewFromInt(int64(qty)))
}

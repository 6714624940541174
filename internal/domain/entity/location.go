package entity

// Location ubicación física de un registro de inventario (zona, pasillo, rack, nivel).
// Code es el identificador legible, p. ej. "A-01-R05-L02".
type Location struct {
	Code  string
	Zone  string
	Aisle string
	Rack  int
	Level int
}

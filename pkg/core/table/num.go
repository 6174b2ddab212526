package table

import (
	"bytes"
	"encoding/json"
	"math"
)

// Num is a scalar that may be undefined. It encodes NaN and ±Inf as JSON null,
// which encoding/json cannot do for a plain float64.
type Num float64

// NaN returns an undefined Num.
func NaN() Num { return Num(math.NaN()) }

// Valid reports whether n is a finite number.
func (n Num) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns n as a float64.
func (n Num) Float() float64 { return float64(n) }

// MarshalJSON implements json.Marshaler.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

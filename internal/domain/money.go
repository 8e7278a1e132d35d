package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// Cents is a money amount stored as an integer number of cents and
// exchanged in JSON as a decimal number (e.g. 150.5).
type Cents int64

func CentsFromFloat(f float64) Cents { return Cents(math.Round(f * 100)) }

func (c Cents) Float() float64 { return float64(c) / 100 }

func (c Cents) String() string { return strconv.FormatFloat(c.Float(), 'f', 2, 64) }

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", b)
	}
	*c = CentsFromFloat(f)
	return nil
}

func (c Cents) Value() (driver.Value, error) { return int64(c), nil }

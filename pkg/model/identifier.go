package model

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Identifier is an account number or synthetic node name as sent by the
// server. Valid is false when the field was null or absent. Empty strings and
// placeholders like "N/A" are valid identifiers.
type Identifier struct {
	Value string
	Valid bool
}

// NewIdentifier returns a valid identifier holding s.
func NewIdentifier(s string) Identifier {
	return Identifier{Value: s, Valid: true}
}

// String returns the raw value, or "" when invalid.
func (id Identifier) String() string {
	return id.Value
}

// Trimmed returns the value with surrounding whitespace removed.
func (id Identifier) Trimmed() string {
	return strings.TrimSpace(id.Value)
}

func (id *Identifier) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = Identifier{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NewIdentifier(s)
		return nil
	}
	// Spreadsheet imports sometimes deliver account numbers as numbers.
	if _, err := strconv.ParseFloat(string(b), 64); err == nil {
		*id = NewIdentifier(string(b))
		return nil
	}
	*id = Identifier{}
	return nil
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(id.Value)
}

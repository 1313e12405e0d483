package productid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const separator = "|"

// MissingFieldError is returned when a field named for the id is not
// present in the record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("derive product id: missing field '%s'", e.Field)
}

// DeriveID joins the values of `fields` (in the given order) with '|' and
// returns the lowercase hex sha256 digest of the result.
func DeriveID(record map[string]string, fields []string) (string, error) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		value, ok := record[f]
		if !ok {
			return "", &MissingFieldError{Field: f}
		}
		parts[i] = value
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, separator)))
	return hex.EncodeToString(sum[:]), nil
}

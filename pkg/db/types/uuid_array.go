package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a Postgres uuid[] column onto a Go slice.
type UUIDArray []uuid.UUID

// Scan implements sql.Scanner for uuid[] columns.
func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseLiteral(v)
	case []byte:
		return a.parseLiteral(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

// Value implements driver.Valuer, producing a Postgres array literal.
func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	b.WriteByte('}')
	return b.String(), nil
}

// ToSet returns the array as a membership set. An empty array yields an
// empty, non-nil map.
func (a UUIDArray) ToSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	return set
}

func (a *UUIDArray) parseLiteral(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = UUIDArray{}
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.Trim(part, `"`))
		id, err := uuid.Parse(part)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", part, err)
		}
		out = append(out, id)
	}
	*a = UUIDArray(out)
	return nil
}

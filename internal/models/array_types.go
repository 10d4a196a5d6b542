package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDSet is a set of user ids stored as UUID[] in PostgreSQL.
// Order is insertion order; duplicates are never stored.
type UUIDSet []uuid.UUID

// Value implements the driver.Valuer interface
func (s UUIDSet) Value() (driver.Value, error) {
	strs := make([]string, len(s))
	for i, id := range s {
		strs[i] = id.String()
	}
	return pq.Array(strs).Value()
}

// Scan implements the sql.Scanner interface
func (s *UUIDSet) Scan(src interface{}) error {
	if src == nil {
		*s = UUIDSet{}
		return nil
	}
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return err
	}
	ids := make(UUIDSet, 0, len(strs))
	for _, str := range strs {
		id, err := uuid.Parse(str)
		if err != nil {
			return fmt.Errorf("invalid uuid in array: %w", err)
		}
		ids = append(ids, id)
	}
	*s = ids
	return nil
}

// Contains reports whether id is in the set
func (s UUIDSet) Contains(id uuid.UUID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with id removed
func (s UUIDSet) Without(id uuid.UUID) UUIDSet {
	out := make(UUIDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// jsonValue and jsonScan back the JSONB columns (stops, schedule, fare)

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src interface{}, dest interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
}

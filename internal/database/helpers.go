package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// translate maps driver errors onto the store sentinels; other errors pass through
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNoRecord
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.ErrDuplicateKey
	}
	return err
}

// uuidArray encodes ids as a PostgreSQL array literal for `= ANY($n::uuid[])`
func uuidArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

// likePattern wraps term for a substring ILIKE match, escaping wildcards
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// requireAffected turns an update that matched no row into models.ErrNoRecord
func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", op, models.ErrNoRecord)
	}
	return nil
}

func stringArray(strs []string) interface{} {
	return pq.Array(strs)
}

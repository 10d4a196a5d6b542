package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/pkg/validator"
)

var requestValidator = validator.New()

// validateRequest checks req against its `validate` tags and returns a
// *models.ValidationError listing every violation
func validateRequest(req interface{}) error {
	violations, err := requestValidator.Struct(req)
	if err != nil {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}

	verr := &models.ValidationError{Message: "validation failed"}
	for _, v := range violations {
		verr.Add(v.Field, v.Message)
	}
	return verr
}

// parseResourceID treats a malformed id like an unknown one
func parseResourceID(raw, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.ErrNotFound(resource)
	}
	return id, nil
}

// storeError maps the store sentinels onto domain errors
func storeError(err error, resource, op string) error {
	switch {
	case errors.Is(err, models.ErrNoRecord):
		return models.ErrNotFound(resource)
	case errors.Is(err, models.ErrDuplicateKey):
		return models.ErrConflict(resource + " already exists")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// clampLimit applies the default when limit is unset and caps it at max
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

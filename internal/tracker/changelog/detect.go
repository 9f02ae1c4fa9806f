// Package changelog turns entity mutations into activity log entries:
// it diffs old/new snapshots over a fixed set of tracked fields,
// generates human-readable summaries, and appends one entry per
// changed field.
package changelog

import (
	"reflect"
	"time"

	"jobtrack-backend/internal/models"
)

// ApplicationTrackedFields are the application fields visible to the
// audit trail, in detection order.
var ApplicationTrackedFields = []string{
	"status",
	"company",
	"role",
	"notes",
	"source",
	"salaryRange",
}

// ContactTrackedFields are the network contact fields visible to the
// audit trail, in detection order.
var ContactTrackedFields = []string{
	"name",
	"email",
	"company",
	"role",
	"metAt",
	"notes",
	"metDate",
	"followUpDate",
	"lastContactedDate",
}

// Detect compares two snapshots of the same entity field by field and
// returns one FieldChange per tracked field whose normalized values
// differ. Fields outside tracked are ignored. An empty result means the
// update was a no-op for audit purposes and no entry may be emitted.
func Detect(oldState, newState map[string]interface{}, tracked []string) []models.FieldChange {
	var changes []models.FieldChange
	for _, field := range tracked {
		oldVal := normalize(oldState[field])
		newVal := normalize(newState[field])
		if !valuesEqual(oldVal, newVal) {
			changes = append(changes, models.FieldChange{
				Field:    field,
				OldValue: oldVal,
				NewValue: newVal,
			})
		}
	}
	return changes
}

// normalize maps absent and typed-nil values to nil, dereferences
// pointers, and brings dates to their canonical UTC instant so that
// representation differences never register as changes.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.UTC()
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC()
	case *models.SalaryRange:
		if val == nil {
			return nil
		}
		return *val
	case string:
		if val == "" {
			return nil
		}
		return val
	default:
		return val
	}
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if ar, ok := a.(models.SalaryRange); ok {
		br, ok := b.(models.SalaryRange)
		return ok && ar.Equal(br)
	}
	return reflect.DeepEqual(a, b)
}

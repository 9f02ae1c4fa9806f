package changelog

import (
	"fmt"

	"jobtrack-backend/internal/models"
)

// applicationChangeSummary renders the one-line description for a single
// application field change. Status transitions keep their literal
// "Status changed from X to Y" form regardless of what else changed in
// the same update.
func applicationChangeSummary(ch models.FieldChange) string {
	switch ch.Field {
	case "status":
		return fmt.Sprintf("Status changed from %s to %s", formatValue(ch.OldValue), formatValue(ch.NewValue))
	case "salaryRange":
		return "Updated salary range"
	default:
		return fmt.Sprintf("Updated %s", ch.Field)
	}
}

// contactChangeSummary renders the description for a single contact
// field change, e.g. `Updated Dana's email`.
func contactChangeSummary(name string, ch models.FieldChange) string {
	return fmt.Sprintf("Updated %s's %s", name, ch.Field)
}

func createSummary(entityType, displayName string) string {
	if entityType == models.EntityTypeNetwork {
		return fmt.Sprintf("Added %s to network", displayName)
	}
	return fmt.Sprintf("Added %s to applications", displayName)
}

// createFromApplicationSummary marks contacts lifted out of an
// application's contact list.
func createFromApplicationSummary(displayName string) string {
	return fmt.Sprintf("Added %s to network (from application)", displayName)
}

func deleteSummary(entityType, displayName string) string {
	if entityType == models.EntityTypeNetwork {
		return fmt.Sprintf("Deleted %s from network", displayName)
	}
	return fmt.Sprintf("Deleted %s application", displayName)
}

func formatValue(v interface{}) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%v", v)
}

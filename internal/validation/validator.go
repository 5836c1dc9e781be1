package validation

import (
	"regexp"
	"time"

	"github.com/comment-giveaway-api/internal/giveaway"
)

var mediaIDRegex = regexp.MustCompile(`^[0-9A-Za-z_-]{1,64}$`)

// ValidationError represents a single validation error on a request field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateCreateExport validates the inputs of an export creation request
func ValidateCreateExport(owner, mediaID string) []ValidationError {
	var errors []ValidationError

	if owner == "" {
		errors = append(errors, ValidationError{Field: "owner", Message: "owner is required"})
	}
	if mediaID == "" {
		errors = append(errors, ValidationError{Field: "media_id", Message: "media_id is required"})
	} else if !mediaIDRegex.MatchString(mediaID) {
		errors = append(errors, ValidationError{Field: "media_id", Message: "invalid media id", Value: mediaID})
	}

	return errors
}

// ValidateAdvanceBudget validates a caller-supplied time budget against the
// configured ceiling
func ValidateAdvanceBudget(budget, max time.Duration) []ValidationError {
	var errors []ValidationError

	if budget < 0 {
		errors = append(errors, ValidationError{Field: "budget_ms", Message: "budget must not be negative", Value: budget.Milliseconds()})
	}
	if budget > max {
		errors = append(errors, ValidationError{Field: "budget_ms", Message: "budget exceeds the allowed maximum", Value: budget.Milliseconds()})
	}

	return errors
}

// ValidateGiveawayOptions validates draw parameters. The winner-count upper
// bound against the filtered participant count is enforced by the engine,
// which is the only place that count is known.
func ValidateGiveawayOptions(opts giveaway.Options) []ValidationError {
	var errors []ValidationError

	if opts.WinnerCount < 1 {
		errors = append(errors, ValidationError{Field: "winner_count", Message: "winner_count must be at least 1", Value: opts.WinnerCount})
	}

	return errors
}

// ValidateGiveawayDate validates an optional replay date: when present it
// must be a parseable timestamp so seeds stay re-derivable
func ValidateGiveawayDate(dateISO string) []ValidationError {
	if dateISO == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, dateISO); err != nil {
		return []ValidationError{{Field: "giveaway_date", Message: "giveaway_date must be RFC3339", Value: dateISO}}
	}
	return nil
}

// ValidateCommentSliceParams validates read-back pagination parameters
func ValidateCommentSliceParams(offset, limit int) []ValidationError {
	var errors []ValidationError

	if offset < 0 {
		errors = append(errors, ValidationError{Field: "offset", Message: "offset must not be negative", Value: offset})
	}
	if limit < 1 || limit > 500 {
		errors = append(errors, ValidationError{Field: "limit", Message: "limit must be between 1 and 500", Value: limit})
	}

	return errors
}

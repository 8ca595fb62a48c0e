package workouts

import (
	"fmt"
	"strings"
)

const (
	maxNameLength    = 255
	maxNotesLength   = 1000
	maxDurationMins  = 600
	minDurationMins  = 1
	maxRestSeconds   = 3600
)

// FieldViolation points at a single bad input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries all violations found in one input, so the
// caller can surface them per field instead of one at a time.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func validateName(e *ValidationError, field, name string) {
	if name == "" {
		e.add(field, "must not be empty")
	} else if len(name) > maxNameLength {
		e.add(field, fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
}

func validateNotes(e *ValidationError, field, notes string) {
	if len(notes) > maxNotesLength {
		e.add(field, fmt.Sprintf("must be at most %d characters", maxNotesLength))
	}
}

func validateDuration(e *ValidationError, field string, minutes *int) {
	if minutes == nil {
		return
	}
	if *minutes < minDurationMins || *minutes > maxDurationMins {
		e.add(field, fmt.Sprintf("must be between %d and %d minutes", minDurationMins, maxDurationMins))
	}
}

func validateExerciseType(e *ValidationError, field, exerciseType string) {
	switch exerciseType {
	case "", ExerciseTypeCompound, ExerciseTypeIsolation:
	default:
		e.add(field, "must be one of: compound, isolation")
	}
}

func (in AddWorkoutInput) Validate() error {
	e := &ValidationError{}
	validateName(e, "name", in.Name)
	if in.Date.IsZero() {
		e.add("date", "must be a valid date")
	}
	validateNotes(e, "notes", in.Notes)
	validateDuration(e, "durationMinutes", in.DurationMinutes)
	return e.orNil()
}

func (in UpdateWorkoutInput) Validate() error {
	e := &ValidationError{}
	if in.Name != nil {
		validateName(e, "name", *in.Name)
	}
	if in.Date != nil && in.Date.IsZero() {
		e.add("date", "must be a valid date")
	}
	if in.Notes != nil {
		validateNotes(e, "notes", *in.Notes)
	}
	validateDuration(e, "durationMinutes", in.DurationMinutes)
	return e.orNil()
}

func (in AddExerciseInput) Validate() error {
	e := &ValidationError{}
	if in.WorkoutID <= 0 {
		e.add("workoutId", "must be a positive integer")
	}
	validateName(e, "name", in.Name)
	validateExerciseType(e, "exerciseType", in.ExerciseType)
	if in.OrderInWorkout <= 0 {
		e.add("orderInWorkout", "must be a positive integer")
	}
	validateNotes(e, "notes", in.Notes)
	return e.orNil()
}

func (in UpdateExerciseInput) Validate() error {
	e := &ValidationError{}
	if in.Name != nil {
		validateName(e, "name", *in.Name)
	}
	if in.ExerciseType != nil {
		validateExerciseType(e, "exerciseType", *in.ExerciseType)
	}
	if in.OrderInWorkout != nil && *in.OrderInWorkout <= 0 {
		e.add("orderInWorkout", "must be a positive integer")
	}
	if in.Notes != nil {
		validateNotes(e, "notes", *in.Notes)
	}
	return e.orNil()
}

func (in AddSetInput) Validate() error {
	e := &ValidationError{}
	if in.ExerciseID <= 0 {
		e.add("exerciseId", "must be a positive integer")
	}
	if in.SetNumber <= 0 {
		e.add("setNumber", "must be a positive integer")
	}
	if in.Reps <= 0 {
		e.add("reps", "must be a positive integer")
	}
	if in.Weight != nil && *in.Weight < 0 {
		e.add("weight", "must not be negative")
	}
	if in.RestSeconds != nil && (*in.RestSeconds < 0 || *in.RestSeconds > maxRestSeconds) {
		e.add("restSeconds", fmt.Sprintf("must be between 0 and %d", maxRestSeconds))
	}
	validateNotes(e, "notes", in.Notes)
	return e.orNil()
}

func (in UpdateSetInput) Validate() error {
	e := &ValidationError{}
	if in.SetNumber != nil && *in.SetNumber <= 0 {
		e.add("setNumber", "must be a positive integer")
	}
	if in.Reps != nil && *in.Reps <= 0 {
		e.add("reps", "must be a positive integer")
	}
	if in.Weight != nil && *in.Weight < 0 {
		e.add("weight", "must not be negative")
	}
	if in.RestSeconds != nil && (*in.RestSeconds < 0 || *in.RestSeconds > maxRestSeconds) {
		e.add("restSeconds", fmt.Sprintf("must be between 0 and %d", maxRestSeconds))
	}
	if in.Notes != nil {
		validateNotes(e, "notes", *in.Notes)
	}
	return e.orNil()
}

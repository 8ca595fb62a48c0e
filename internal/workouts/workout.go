package workouts

import "time"

// Workout is a single training session owned by exactly one user.
// Exercises come back sorted by their order key, sets by set number.
type Workout struct {
	ID              int        `json:"id"`
	UserID          int        `json:"userId"`
	Name            string     `json:"name"`
	Date            time.Time  `json:"date"`
	Notes           string     `json:"notes"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Exercises       []Exercise `json:"exercises"`
}

type Exercise struct {
	ID             int       `json:"id"`
	WorkoutID      int       `json:"workoutId"`
	TemplateID     *int      `json:"templateId,omitempty"`
	Name           string    `json:"name"`
	ExerciseType   string    `json:"exerciseType"`
	OrderInWorkout int       `json:"orderInWorkout"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Sets           []Set     `json:"sets"`
}

type Set struct {
	ID          int       `json:"id"`
	ExerciseID  int       `json:"exerciseId"`
	SetNumber   int       `json:"setNumber"`
	Reps        int       `json:"reps"`
	Weight      *float64  `json:"weight,omitempty"`
	RPE         *float64  `json:"rpe,omitempty"`
	RestSeconds *int      `json:"restSeconds,omitempty"`
	IsWarmup    bool      `json:"isWarmup"`
	IsFailure   bool      `json:"isFailure"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	ExerciseTypeCompound  = "compound"
	ExerciseTypeIsolation = "isolation"
)

type AddWorkoutInput struct {
	Name            string    `json:"name"`
	Date            time.Time `json:"date"`
	Notes           string    `json:"notes"`
	DurationMinutes *int      `json:"durationMinutes"`
}

// UpdateWorkoutInput carries a partial update, nil fields stay untouched.
type UpdateWorkoutInput struct {
	Name            *string    `json:"name"`
	Date            *time.Time `json:"date"`
	Notes           *string    `json:"notes"`
	DurationMinutes *int       `json:"durationMinutes"`
}

type AddExerciseInput struct {
	WorkoutID      int    `json:"workoutId"`
	TemplateID     *int   `json:"templateId"`
	Name           string `json:"name"`
	ExerciseType   string `json:"exerciseType"`
	OrderInWorkout int    `json:"orderInWorkout"`
	Notes          string `json:"notes"`
}

type UpdateExerciseInput struct {
	Name           *string `json:"name"`
	ExerciseType   *string `json:"exerciseType"`
	OrderInWorkout *int    `json:"orderInWorkout"`
	Notes          *string `json:"notes"`
}

type AddSetInput struct {
	ExerciseID  int      `json:"exerciseId"`
	SetNumber   int      `json:"setNumber"`
	Reps        int      `json:"reps"`
	Weight      *float64 `json:"weight"`
	RPE         *float64 `json:"rpe"`
	RestSeconds *int     `json:"restSeconds"`
	IsWarmup    bool     `json:"isWarmup"`
	IsFailure   bool     `json:"isFailure"`
	Notes       string   `json:"notes"`
}

type UpdateSetInput struct {
	SetNumber   *int     `json:"setNumber"`
	Reps        *int     `json:"reps"`
	Weight      *float64 `json:"weight"`
	RPE         *float64 `json:"rpe"`
	RestSeconds *int     `json:"restSeconds"`
	IsWarmup    *bool    `json:"isWarmup"`
	IsFailure   *bool    `json:"isFailure"`
	Notes       *string  `json:"notes"`
}

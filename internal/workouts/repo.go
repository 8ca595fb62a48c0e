package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkovacek/traindiary/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSetNotFound      = errors.New("set not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// dayBounds returns the [from, to) window of the local calendar day
// containing t, in t's location.
func dayBounds(t time.Time) (from, to time.Time) {
	year, month, day := t.Date()
	from = time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}

func (r *Repo) Add(ctx context.Context, userID int, input AddWorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var w Workout
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, name, date, notes, duration_minutes)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, date, notes, duration_minutes, created_at, updated_at;`,
		userID, input.Name, input.Date, input.Notes, input.DurationMinutes,
	).Scan(
		&w.ID, &w.UserID, &w.Name, &w.Date, &w.Notes,
		&w.DurationMinutes, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", w.ID))

	w.Exercises = []Exercise{}
	return &w, nil
}

// Update applies a partial update. Ownership is part of the statement
// predicate, so a workout belonging to another user reports not found
// without a separate check.
func (r *Repo) Update(ctx context.Context, workoutID, userID int, input UpdateWorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.Int("user.id", userID))

	var w Workout
	err = r.db.QueryRow(
		ctx,
		`UPDATE workouts SET
				name = COALESCE($1, name),
				date = COALESCE($2, date),
				notes = COALESCE($3, notes),
				duration_minutes = COALESCE($4, duration_minutes),
				updated_at = now()
			WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, name, date, notes, duration_minutes, created_at, updated_at;`,
		input.Name, input.Date, input.Notes, input.DurationMinutes,
		workoutID, userID,
	).Scan(
		&w.ID, &w.UserID, &w.Name, &w.Date, &w.Notes,
		&w.DurationMinutes, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("update workout: %w", err)
	}

	return &w, nil
}

func (r *Repo) Delete(ctx context.Context, workoutID, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2;`,
		workoutID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// Get returns one workout with nested exercises and sets. The same
// not found error comes back whether the workout is missing or owned
// by somebody else.
func (r *Repo) Get(ctx context.Context, workoutID, userID int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, date, notes, duration_minutes, created_at, updated_at
			FROM workouts
			WHERE id = $1 AND user_id = $2;`,
		workoutID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	if err := r.loadNested(ctx, workouts); err != nil {
		return nil, err
	}

	return &workouts[0], nil
}

// ListForDay returns the user's workouts within the local calendar day
// containing day, newest created first, with nested exercises and sets.
func (r *Repo) ListForDay(ctx context.Context, userID int, day time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listforday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("day", day.Format(time.DateOnly)))

	from, to := dayBounds(day)
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, date, notes, duration_minutes, created_at, updated_at
			FROM workouts
			WHERE user_id = $1 AND date >= $2 AND date < $3
			ORDER BY created_at DESC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}

	if err := r.loadNested(ctx, workouts); err != nil {
		return nil, err
	}

	return workouts, nil
}

// ListAll returns the user's workouts by workout date descending,
// without nested exercises.
func (r *Repo) ListAll(ctx context.Context, userID int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, date, notes, duration_minutes, created_at, updated_at
			FROM workouts
			WHERE user_id = $1
			ORDER BY date DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}
	return workouts, nil
}

func (r *Repo) AddExercise(ctx context.Context, userID int, input AddExerciseInput) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", input.WorkoutID))
	span.SetAttributes(attribute.Int("user.id", userID))

	// the insert only happens when the owning workout belongs to the
	// caller, checked in the same statement
	var e Exercise
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercises (workout_id, template_id, name, exercise_type, order_in_workout, notes)
			SELECT w.id, $2, $3, $4, $5, $6
				FROM workouts w
				WHERE w.id = $1 AND w.user_id = $7
		RETURNING id, workout_id, template_id, name, exercise_type, order_in_workout, notes, created_at, updated_at;`,
		input.WorkoutID, input.TemplateID, input.Name, input.ExerciseType,
		input.OrderInWorkout, input.Notes, userID,
	).Scan(
		&e.ID, &e.WorkoutID, &e.TemplateID, &e.Name,
		&e.ExerciseType, &e.OrderInWorkout, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", e.ID))

	e.Sets = []Set{}
	return &e, nil
}

func (r *Repo) UpdateExercise(ctx context.Context, exerciseID, userID int, input UpdateExerciseInput) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))
	span.SetAttributes(attribute.Int("user.id", userID))

	var e Exercise
	err = r.db.QueryRow(
		ctx,
		`UPDATE exercises e SET
				name = COALESCE($1, e.name),
				exercise_type = COALESCE($2, e.exercise_type),
				order_in_workout = COALESCE($3, e.order_in_workout),
				notes = COALESCE($4, e.notes),
				updated_at = now()
			FROM workouts w
			WHERE e.id = $5 AND e.workout_id = w.id AND w.user_id = $6
		RETURNING e.id, e.workout_id, e.template_id, e.name, e.exercise_type, e.order_in_workout, e.notes, e.created_at, e.updated_at;`,
		input.Name, input.ExerciseType, input.OrderInWorkout, input.Notes,
		exerciseID, userID,
	).Scan(
		&e.ID, &e.WorkoutID, &e.TemplateID, &e.Name,
		&e.ExerciseType, &e.OrderInWorkout, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("update exercise: %w", err)
	}

	return &e, nil
}

func (r *Repo) DeleteExercise(ctx context.Context, exerciseID, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercises e
			USING workouts w
			WHERE e.id = $1 AND e.workout_id = w.id AND w.user_id = $2;`,
		exerciseID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) AddSet(ctx context.Context, userID int, input AddSetInput) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", input.ExerciseID))
	span.SetAttributes(attribute.Int("user.id", userID))

	var s Set
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO sets
				(exercise_id, set_number, reps, weight, rpe, rest_seconds, is_warmup, is_failure, notes)
			SELECT e.id, $2, $3, $4, $5, $6, $7, $8, $9
				FROM exercises e
				JOIN workouts w ON e.workout_id = w.id
				WHERE e.id = $1 AND w.user_id = $10
		RETURNING id, exercise_id, set_number, reps, weight, rpe, rest_seconds, is_warmup, is_failure, notes, created_at, updated_at;`,
		input.ExerciseID, input.SetNumber, input.Reps, input.Weight, input.RPE,
		input.RestSeconds, input.IsWarmup, input.IsFailure, input.Notes, userID,
	).Scan(
		&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.RPE,
		&s.RestSeconds, &s.IsWarmup, &s.IsFailure, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("insert set: %w", err)
	}

	span.SetAttributes(attribute.Int("set.id", s.ID))

	return &s, nil
}

func (r *Repo) UpdateSet(ctx context.Context, setID, userID int, input UpdateSetInput) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))
	span.SetAttributes(attribute.Int("user.id", userID))

	var s Set
	err = r.db.QueryRow(
		ctx,
		`UPDATE sets s SET
				set_number = COALESCE($1, s.set_number),
				reps = COALESCE($2, s.reps),
				weight = COALESCE($3, s.weight),
				rpe = COALESCE($4, s.rpe),
				rest_seconds = COALESCE($5, s.rest_seconds),
				is_warmup = COALESCE($6, s.is_warmup),
				is_failure = COALESCE($7, s.is_failure),
				notes = COALESCE($8, s.notes),
				updated_at = now()
			FROM exercises e
			JOIN workouts w ON e.workout_id = w.id
			WHERE s.id = $9 AND s.exercise_id = e.id AND w.user_id = $10
		RETURNING s.id, s.exercise_id, s.set_number, s.reps, s.weight, s.rpe, s.rest_seconds, s.is_warmup, s.is_failure, s.notes, s.created_at, s.updated_at;`,
		input.SetNumber, input.Reps, input.Weight, input.RPE, input.RestSeconds,
		input.IsWarmup, input.IsFailure, input.Notes, setID, userID,
	).Scan(
		&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.RPE,
		&s.RestSeconds, &s.IsWarmup, &s.IsFailure, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("update set: %w", err)
	}

	return &s, nil
}

func (r *Repo) DeleteSet(ctx context.Context, setID, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM sets s
			USING exercises e, workouts w
			WHERE s.id = $1 AND s.exercise_id = e.id AND e.workout_id = w.id AND w.user_id = $2;`,
		setID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

// loadNested fills in the exercises and their sets for the given
// workouts, one query per level.
func (r *Repo) loadNested(ctx context.Context, workouts []Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	workoutIDs := make([]int, 0, len(workouts))
	for i := range workouts {
		workouts[i].Exercises = []Exercise{}
		workoutIDs = append(workoutIDs, workouts[i].ID)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, workout_id, template_id, name, exercise_type, order_in_workout, notes, created_at, updated_at
			FROM exercises
			WHERE workout_id = ANY($1)
			ORDER BY order_in_workout ASC, id ASC;`,
		workoutIDs,
	)
	if err != nil {
		return fmt.Errorf("query exercises: %w", err)
	}
	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return fmt.Errorf("rows2exercises: %w", err)
	}

	if len(exercises) > 0 {
		exerciseIDs := make([]int, 0, len(exercises))
		for i := range exercises {
			exerciseIDs = append(exerciseIDs, exercises[i].ID)
		}

		setRows, err := r.db.Query(
			ctx,
			`SELECT id, exercise_id, set_number, reps, weight, rpe, rest_seconds, is_warmup, is_failure, notes, created_at, updated_at
				FROM sets
				WHERE exercise_id = ANY($1)
				ORDER BY set_number ASC, id ASC;`,
			exerciseIDs,
		)
		if err != nil {
			return fmt.Errorf("query sets: %w", err)
		}
		sets, err := r.rows2sets(setRows)
		if err != nil {
			return fmt.Errorf("rows2sets: %w", err)
		}

		setsPerExercise := make(map[int][]Set, len(exercises))
		for _, s := range sets {
			setsPerExercise[s.ExerciseID] = append(setsPerExercise[s.ExerciseID], s)
		}
		for i := range exercises {
			if exSets, ok := setsPerExercise[exercises[i].ID]; ok {
				exercises[i].Sets = exSets
			}
		}
	}

	exercisesPerWorkout := make(map[int][]Exercise, len(workouts))
	for _, e := range exercises {
		exercisesPerWorkout[e.WorkoutID] = append(exercisesPerWorkout[e.WorkoutID], e)
	}
	for i := range workouts {
		if wExercises, ok := exercisesPerWorkout[workouts[i].ID]; ok {
			workouts[i].Exercises = wExercises
		}
	}

	return nil
}

func (r *Repo) rows2workouts(rows pgx.Rows) ([]Workout, error) {
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.Date, &w.Notes,
			&w.DurationMinutes, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *Repo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		e := Exercise{Sets: []Set{}}
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.TemplateID, &e.Name,
			&e.ExerciseType, &e.OrderInWorkout, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *Repo) rows2sets(rows pgx.Rows) ([]Set, error) {
	defer rows.Close()

	sets := []Set{}
	for rows.Next() {
		var s Set
		if err := rows.Scan(
			&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.RPE,
			&s.RestSeconds, &s.IsWarmup, &s.IsFailure, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

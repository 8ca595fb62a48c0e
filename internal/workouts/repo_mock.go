package workouts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// repoMock mirrors the ownership semantics of the real repo in memory,
// including the collapsed not found errors for foreign rows.
type repoMock struct {
	mutex     sync.Mutex
	nextID    int
	workouts  map[int]*Workout
	exercises map[int]*Exercise
	sets      map[int]*Set
}

func NewMockWorkoutsRepo() *repoMock {
	return &repoMock{
		nextID:    1,
		workouts:  make(map[int]*Workout),
		exercises: make(map[int]*Exercise),
		sets:      make(map[int]*Set),
	}
}

func (r *repoMock) id() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *repoMock) Add(_ context.Context, userID int, input AddWorkoutInput) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	w := &Workout{
		ID:              r.id(),
		UserID:          userID,
		Name:            input.Name,
		Date:            input.Date,
		Notes:           input.Notes,
		DurationMinutes: input.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
		Exercises:       []Exercise{},
	}
	r.workouts[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *repoMock) Update(_ context.Context, workoutID, userID int, input UpdateWorkoutInput) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	if input.Name != nil {
		w.Name = *input.Name
	}
	if input.Date != nil {
		w.Date = *input.Date
	}
	if input.Notes != nil {
		w.Notes = *input.Notes
	}
	if input.DurationMinutes != nil {
		w.DurationMinutes = input.DurationMinutes
	}
	w.UpdatedAt = time.Now()

	cp := *w
	return &cp, nil
}

func (r *repoMock) Delete(_ context.Context, workoutID, userID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.workouts[workoutID]
	if !ok || w.UserID != userID {
		return ErrWorkoutNotFound
	}

	delete(r.workouts, workoutID)
	for eid, e := range r.exercises {
		if e.WorkoutID != workoutID {
			continue
		}
		delete(r.exercises, eid)
		for sid, s := range r.sets {
			if s.ExerciseID == eid {
				delete(r.sets, sid)
			}
		}
	}
	return nil
}

func (r *repoMock) Get(_ context.Context, workoutID, userID int) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.workouts[workoutID]
	if !ok || w.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	cp := *w
	cp.Exercises = r.exercisesOf(workoutID)
	return &cp, nil
}

func (r *repoMock) ListForDay(_ context.Context, userID int, day time.Time) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	from, to := dayBounds(day)
	workouts := []Workout{}
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if w.Date.Before(from) || !w.Date.Before(to) {
			continue
		}
		cp := *w
		cp.Exercises = r.exercisesOf(w.ID)
		workouts = append(workouts, cp)
	}
	sort.Slice(workouts, func(i, j int) bool {
		if workouts[i].CreatedAt.Equal(workouts[j].CreatedAt) {
			return workouts[i].ID > workouts[j].ID
		}
		return workouts[i].CreatedAt.After(workouts[j].CreatedAt)
	})
	return workouts, nil
}

func (r *repoMock) ListAll(_ context.Context, userID int) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	workouts := []Workout{}
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		cp := *w
		cp.Exercises = []Exercise{}
		workouts = append(workouts, cp)
	}
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].Date.After(workouts[j].Date)
	})
	return workouts, nil
}

func (r *repoMock) AddExercise(_ context.Context, userID int, input AddExerciseInput) (*Exercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.workouts[input.WorkoutID]
	if !ok || w.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	now := time.Now()
	e := &Exercise{
		ID:             r.id(),
		WorkoutID:      input.WorkoutID,
		TemplateID:     input.TemplateID,
		Name:           input.Name,
		ExerciseType:   input.ExerciseType,
		OrderInWorkout: input.OrderInWorkout,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
		Sets:           []Set{},
	}
	r.exercises[e.ID] = e
	cp := *e
	return &cp, nil
}

func (r *repoMock) UpdateExercise(_ context.Context, exerciseID, userID int, input UpdateExerciseInput) (*Exercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, err := r.ownedExercise(exerciseID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		e.Name = *input.Name
	}
	if input.ExerciseType != nil {
		e.ExerciseType = *input.ExerciseType
	}
	if input.OrderInWorkout != nil {
		e.OrderInWorkout = *input.OrderInWorkout
	}
	if input.Notes != nil {
		e.Notes = *input.Notes
	}
	e.UpdatedAt = time.Now()

	cp := *e
	return &cp, nil
}

func (r *repoMock) DeleteExercise(_ context.Context, exerciseID, userID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, err := r.ownedExercise(exerciseID, userID); err != nil {
		return err
	}

	delete(r.exercises, exerciseID)
	for sid, s := range r.sets {
		if s.ExerciseID == exerciseID {
			delete(r.sets, sid)
		}
	}
	return nil
}

func (r *repoMock) AddSet(_ context.Context, userID int, input AddSetInput) (*Set, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, err := r.ownedExercise(input.ExerciseID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Set{
		ID:          r.id(),
		ExerciseID:  input.ExerciseID,
		SetNumber:   input.SetNumber,
		Reps:        input.Reps,
		Weight:      input.Weight,
		RPE:         input.RPE,
		RestSeconds: input.RestSeconds,
		IsWarmup:    input.IsWarmup,
		IsFailure:   input.IsFailure,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.sets[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *repoMock) UpdateSet(_ context.Context, setID, userID int, input UpdateSetInput) (*Set, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	s, err := r.ownedSet(setID, userID)
	if err != nil {
		return nil, err
	}

	if input.SetNumber != nil {
		s.SetNumber = *input.SetNumber
	}
	if input.Reps != nil {
		s.Reps = *input.Reps
	}
	if input.Weight != nil {
		s.Weight = input.Weight
	}
	if input.RPE != nil {
		s.RPE = input.RPE
	}
	if input.RestSeconds != nil {
		s.RestSeconds = input.RestSeconds
	}
	if input.IsWarmup != nil {
		s.IsWarmup = *input.IsWarmup
	}
	if input.IsFailure != nil {
		s.IsFailure = *input.IsFailure
	}
	if input.Notes != nil {
		s.Notes = *input.Notes
	}
	s.UpdatedAt = time.Now()

	cp := *s
	return &cp, nil
}

func (r *repoMock) DeleteSet(_ context.Context, setID, userID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, err := r.ownedSet(setID, userID); err != nil {
		return err
	}
	delete(r.sets, setID)
	return nil
}

func (r *repoMock) ownedExercise(exerciseID, userID int) (*Exercise, error) {
	e, ok := r.exercises[exerciseID]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	w, ok := r.workouts[e.WorkoutID]
	if !ok || w.UserID != userID {
		return nil, ErrExerciseNotFound
	}
	return e, nil
}

func (r *repoMock) ownedSet(setID, userID int) (*Set, error) {
	s, ok := r.sets[setID]
	if !ok {
		return nil, ErrSetNotFound
	}
	if _, err := r.ownedExercise(s.ExerciseID, userID); err != nil {
		return nil, ErrSetNotFound
	}
	return s, nil
}

func (r *repoMock) exercisesOf(workoutID int) []Exercise {
	exercises := []Exercise{}
	for _, e := range r.exercises {
		if e.WorkoutID != workoutID {
			continue
		}
		cp := *e
		cp.Sets = r.setsOf(e.ID)
		exercises = append(exercises, cp)
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].OrderInWorkout == exercises[j].OrderInWorkout {
			return exercises[i].ID < exercises[j].ID
		}
		return exercises[i].OrderInWorkout < exercises[j].OrderInWorkout
	})
	return exercises
}

func (r *repoMock) setsOf(exerciseID int) []Set {
	sets := []Set{}
	for _, s := range r.sets {
		if s.ExerciseID == exerciseID {
			cp := *s
			sets = append(sets, cp)
		}
	}
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].SetNumber == sets[j].SetNumber {
			return sets[i].ID < sets[j].ID
		}
		return sets[i].SetNumber < sets[j].SetNumber
	})
	return sets
}

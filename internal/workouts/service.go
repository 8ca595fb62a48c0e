package workouts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkovacek/traindiary/internal/auth"
	"github.com/mkovacek/traindiary/internal/telemetry/metrics"
	"github.com/mkovacek/traindiary/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type workoutsRepo interface {
	Add(ctx context.Context, userID int, input AddWorkoutInput) (*Workout, error)
	Update(ctx context.Context, workoutID, userID int, input UpdateWorkoutInput) (*Workout, error)
	Delete(ctx context.Context, workoutID, userID int) error
	Get(ctx context.Context, workoutID, userID int) (*Workout, error)
	ListForDay(ctx context.Context, userID int, day time.Time) ([]Workout, error)
	ListAll(ctx context.Context, userID int) ([]Workout, error)
	AddExercise(ctx context.Context, userID int, input AddExerciseInput) (*Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID, userID int, input UpdateExerciseInput) (*Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID, userID int) error
	AddSet(ctx context.Context, userID int, input AddSetInput) (*Set, error)
	UpdateSet(ctx context.Context, setID, userID int, input UpdateSetInput) (*Set, error)
	DeleteSet(ctx context.Context, setID, userID int) error
}

// Service is the only path between the transport layer and the repo.
// Every operation runs the same sequence: validate the input, resolve
// the caller to a user id, hit the repo with that id, and on mutation
// drop the user's cached day views.
type Service struct {
	repo           workoutsRepo
	resolver       auth.UserResolver
	dayCache       *DayCache
	metricsManager *metrics.Manager
}

func NewService(
	repo workoutsRepo,
	resolver auth.UserResolver,
	dayCache *DayCache,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		resolver:       resolver,
		dayCache:       dayCache,
		metricsManager: metricsManager,
	}
}

func (s *Service) CreateWorkout(ctx context.Context, token string, input AddWorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	workout, err := s.repo.Add(ctx, userID, input)
	if err != nil {
		return nil, fmt.Errorf("add workout: %w", err)
	}

	s.metricsManager.CounterWorkoutsCreated.Inc()
	s.dayCache.InvalidateUser(userID)
	return workout, nil
}

func (s *Service) UpdateWorkout(ctx context.Context, token string, workoutID int, input UpdateWorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	workout, err := s.repo.Update(ctx, workoutID, userID, input)
	if err != nil {
		return nil, err
	}

	s.dayCache.InvalidateUser(userID)
	return workout, nil
}

func (s *Service) DeleteWorkout(ctx context.Context, token string, workoutID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, workoutID, userID); err != nil {
		return err
	}

	s.metricsManager.CounterWorkoutsDeleted.Inc()
	s.dayCache.InvalidateUser(userID)
	return nil
}

func (s *Service) GetWorkout(ctx context.Context, token string, workoutID int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, workoutID, userID)
}

// ListForDay serves the day view, cached per user and day.
func (s *Service) ListForDay(ctx context.Context, token string, day time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.listforday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	if cached, ok := s.dayCache.Get(userID, day); ok {
		var workouts []Workout
		unmarshalErr := json.Unmarshal(cached, &workouts)
		if unmarshalErr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return workouts, nil
		}
		log.Errorf("unmarshal cached day view for user %d: %s", userID, unmarshalErr)
	}

	workouts, err := s.repo.ListForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(workouts); err == nil {
		s.dayCache.Set(userID, day, payload)
	}

	return workouts, nil
}

func (s *Service) ListAllWorkouts(ctx context.Context, token string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	return s.repo.ListAll(ctx, userID)
}

func (s *Service) AddExercise(ctx context.Context, token string, input AddExerciseInput) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.addexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", input.WorkoutID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	exercise, err := s.repo.AddExercise(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	s.dayCache.InvalidateUser(userID)
	return exercise, nil
}

func (s *Service) UpdateExercise(ctx context.Context, token string, exerciseID int, input UpdateExerciseInput) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.updateexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	exercise, err := s.repo.UpdateExercise(ctx, exerciseID, userID, input)
	if err != nil {
		return nil, err
	}

	s.dayCache.InvalidateUser(userID)
	return exercise, nil
}

func (s *Service) DeleteExercise(ctx context.Context, token string, exerciseID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.deleteexercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteExercise(ctx, exerciseID, userID); err != nil {
		return err
	}

	s.dayCache.InvalidateUser(userID)
	return nil
}

func (s *Service) AddSet(ctx context.Context, token string, input AddSetInput) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.addset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", input.ExerciseID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	set, err := s.repo.AddSet(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	s.dayCache.InvalidateUser(userID)
	return set, nil
}

func (s *Service) UpdateSet(ctx context.Context, token string, setID int, input UpdateSetInput) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.updateset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	set, err := s.repo.UpdateSet(ctx, setID, userID, input)
	if err != nil {
		return nil, err
	}

	s.dayCache.InvalidateUser(userID)
	return set, nil
}

func (s *Service) DeleteSet(ctx context.Context, token string, setID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.deleteset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	userID, err := s.resolver.ResolveUserID(ctx, token)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteSet(ctx, setID, userID); err != nil {
		return err
	}

	s.dayCache.InvalidateUser(userID)
	return nil
}

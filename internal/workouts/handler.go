package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mkovacek/traindiary/internal/auth"
	"github.com/mkovacek/traindiary/internal/telemetry/tracing"
	"github.com/mkovacek/traindiary/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	CreateWorkout(ctx context.Context, token string, input AddWorkoutInput) (*Workout, error)
	UpdateWorkout(ctx context.Context, token string, workoutID int, input UpdateWorkoutInput) (*Workout, error)
	DeleteWorkout(ctx context.Context, token string, workoutID int) error
	GetWorkout(ctx context.Context, token string, workoutID int) (*Workout, error)
	ListForDay(ctx context.Context, token string, day time.Time) ([]Workout, error)
	ListAllWorkouts(ctx context.Context, token string) ([]Workout, error)
	AddExercise(ctx context.Context, token string, input AddExerciseInput) (*Exercise, error)
	UpdateExercise(ctx context.Context, token string, exerciseID int, input UpdateExerciseInput) (*Exercise, error)
	DeleteExercise(ctx context.Context, token string, exerciseID int) error
	AddSet(ctx context.Context, token string, input AddSetInput) (*Set, error)
	UpdateSet(ctx context.Context, token string, setID int, input UpdateSetInput) (*Set, error)
	DeleteSet(ctx context.Context, token string, setID int) error
}

type DeletedResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	workoutsRouter := router.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("", handler.handleCreateWorkout).Methods("POST", "OPTIONS")
	workoutsRouter.HandleFunc("", handler.handleListAll).Methods("GET", "OPTIONS")
	workoutsRouter.HandleFunc("/day/{date}", handler.handleListForDay).Methods("GET", "OPTIONS")
	workoutsRouter.HandleFunc("/{id}", handler.handleGetWorkout).Methods("GET", "OPTIONS")
	workoutsRouter.HandleFunc("/{id}", handler.handleUpdateWorkout).Methods("PUT", "OPTIONS")
	workoutsRouter.HandleFunc("/{id}", handler.handleDeleteWorkout).Methods("DELETE", "OPTIONS")

	exercisesRouter := router.PathPrefix("/exercises").Subrouter()
	exercisesRouter.HandleFunc("", handler.handleAddExercise).Methods("POST", "OPTIONS")
	exercisesRouter.HandleFunc("/{id}", handler.handleUpdateExercise).Methods("PUT", "OPTIONS")
	exercisesRouter.HandleFunc("/{id}", handler.handleDeleteExercise).Methods("DELETE", "OPTIONS")

	setsRouter := router.PathPrefix("/sets").Subrouter()
	setsRouter.HandleFunc("", handler.handleAddSet).Methods("POST", "OPTIONS")
	setsRouter.HandleFunc("/{id}", handler.handleUpdateSet).Methods("PUT", "OPTIONS")
	setsRouter.HandleFunc("/{id}", handler.handleDeleteSet).Methods("DELETE", "OPTIONS")
}

// writeError maps the service error taxonomy to status codes. Not
// found and foreign ownership come back identical on purpose.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		payload, mErr := json.Marshal(validationErr)
		if mErr != nil {
			http.Error(w, "invalid input", http.StatusBadRequest)
			return
		}
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payload, http.StatusBadRequest)
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrWorkoutNotFound):
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
	case errors.Is(err, ErrSetNotFound):
		http.Error(w, "set not found", http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}, statusCode int) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payload, statusCode)
}

func pathID(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("id empty")
	}
	return strconv.Atoi(idStr)
}

func (handler *Handler) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	var input AddWorkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("create workout, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.CreateWorkout(ctx, r.Header.Get(auth.TokenHeader), input)
	if err != nil {
		log.Errorf("failed to create workout: %s", err)
		writeError(w, err)
		return
	}

	writeJSON(w, workout, http.StatusCreated)
}

func (handler *Handler) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	var input UpdateWorkoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.UpdateWorkout(ctx, r.Header.Get(auth.TokenHeader), id, input)
	if err != nil {
		log.Errorf("failed to update workout %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, workout, http.StatusOK)
}

func (handler *Handler) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteWorkout(ctx, r.Header.Get(auth.TokenHeader), id); err != nil {
		log.Errorf("failed to delete workout %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.GetWorkout(ctx, r.Header.Get(auth.TokenHeader), id)
	if err != nil {
		log.Errorf("failed to get workout %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, workout, http.StatusOK)
}

func (handler *Handler) handleListForDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listforday")
	defer span.End()

	dateStr := mux.Vars(r)["date"]
	day, err := time.ParseInLocation(time.DateOnly, dateStr, time.Local)
	if err != nil {
		http.Error(w, "error, date invalid, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	workouts, err := handler.service.ListForDay(ctx, r.Header.Get(auth.TokenHeader), day)
	if err != nil {
		log.Errorf("failed to list workouts for day %s: %s", dateStr, err)
		writeError(w, err)
		return
	}

	writeJSON(w, workouts, http.StatusOK)
}

func (handler *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listall")
	defer span.End()

	workouts, err := handler.service.ListAllWorkouts(ctx, r.Header.Get(auth.TokenHeader))
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		writeError(w, err)
		return
	}

	writeJSON(w, workouts, http.StatusOK)
}

func (handler *Handler) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addexercise")
	defer span.End()

	var input AddExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	exercise, err := handler.service.AddExercise(ctx, r.Header.Get(auth.TokenHeader), input)
	if err != nil {
		log.Errorf("failed to add exercise to workout %d: %s", input.WorkoutID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, exercise, http.StatusCreated)
}

func (handler *Handler) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateexercise")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	var input UpdateExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	exercise, err := handler.service.UpdateExercise(ctx, r.Header.Get(auth.TokenHeader), id, input)
	if err != nil {
		log.Errorf("failed to update exercise %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, exercise, http.StatusOK)
}

func (handler *Handler) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteexercise")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteExercise(ctx, r.Header.Get(auth.TokenHeader), id); err != nil {
		log.Errorf("failed to delete exercise %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) handleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addset")
	defer span.End()

	var input AddSetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	set, err := handler.service.AddSet(ctx, r.Header.Get(auth.TokenHeader), input)
	if err != nil {
		log.Errorf("failed to add set to exercise %d: %s", input.ExerciseID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, set, http.StatusCreated)
}

func (handler *Handler) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateset")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	var input UpdateSetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	set, err := handler.service.UpdateSet(ctx, r.Header.Get(auth.TokenHeader), id, input)
	if err != nil {
		log.Errorf("failed to update set %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, set, http.StatusOK)
}

func (handler *Handler) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteset")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteSet(ctx, r.Header.Get(auth.TokenHeader), id); err != nil {
		log.Errorf("failed to delete set %d: %s", id, err)
		writeError(w, err)
		return
	}

	writeJSON(w, DeletedResponse{DeletedID: id}, http.StatusOK)
}

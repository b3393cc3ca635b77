package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/gradecalc/internal/grading"
	"github.com/mind-engage/gradecalc/internal/metrics"
	"github.com/mind-engage/gradecalc/internal/student"
	syncx "github.com/mind-engage/gradecalc/internal/sync"
)

const (
	msgStudentNotFound  = "Estudiante no encontrado"
	msgHistoryDisabled  = "Historial de cálculos no disponible"
	msgInvalidLimit     = "El parámetro limit debe ser un entero positivo"
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// EventLog is the subset of syncx.EventRepo the handlers use.
type EventLog interface {
	Append(ctx context.Context, e syncx.Event) (syncx.Event, error)
	ListByKey(ctx context.Context, typ, key string, limit int) ([]syncx.Event, error)
}

// StudentDeps wires the student routes. Events and Metrics are optional.
type StudentDeps struct {
	Store      student.Store
	Calculator *grading.Calculator
	Events     EventLog
	Metrics    *metrics.CalculationObserver
	Log        *slog.Logger
}

func MountStudents(r chi.Router, d StudentDeps) {
	if d.Calculator == nil {
		d.Calculator = grading.NewCalculator()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r.Get("/", ListStudentsHandler(d.Store))
	r.Get("/{id}", GetStudentHandler(d.Store))
	r.Post("/{id}", UpsertStudentHandler(d.Store))
	r.Post("/{id}/calculate", CalculateHandler(d))
	r.Get("/{id}/reports", ReportHistoryHandler(d.Events))
}

// GET /api/students
func ListStudentsHandler(store student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// GET /api/students/{id}
func GetStudentHandler(store student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, student.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgStudentNotFound)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// POST /api/students/{id}
func UpsertStudentHandler(store student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := recordFromRequest(w, r)
		if !ok {
			return
		}
		saved, err := store.Upsert(r.Context(), rec)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// POST /api/students/{id}/calculate
//
// The body always rebuilds the record; it is stored only once the calculation
// succeeds.
func CalculateHandler(d StudentDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := recordFromRequest(w, r)
		if !ok {
			d.Metrics.RecordInvalid()
			return
		}
		log := d.Log.With("student_id", rec.ID)

		report, err := d.Calculator.Calculate(rec)
		if err != nil {
			d.Metrics.RecordInvalid()
			log.Info("calculation rejected", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := d.Store.Upsert(r.Context(), rec); err != nil {
			if grading.IsValidation(err) {
				d.Metrics.RecordInvalid()
			}
			writeStoreError(w, err)
			return
		}

		if d.Events != nil {
			data, err := json.Marshal(report)
			if err == nil {
				_, err = d.Events.Append(r.Context(), syncx.Event{
					Type:     syncx.TypeGradeCalculated,
					Key:      rec.ID,
					DataJSON: string(data),
				})
			}
			if err != nil {
				log.Warn("record calculation event", "error", err)
			}
		}

		d.Metrics.RecordSuccess(report.FinalGrade, rec.HasReachedMinimumClasses)
		log.Info("grade calculated",
			"base_grade", report.BaseGrade,
			"extra_points", report.ExtraPointsApplied,
			"final_grade", report.FinalGrade,
			"inconsistencies", len(report.Inconsistencies),
		)
		writeJSON(w, http.StatusOK, report)
	}
}

type reportEntry struct {
	EventID   string          `json:"eventId"`
	CreatedAt int64           `json:"createdAt"`
	Report    json.RawMessage `json:"report"`
}

// GET /api/students/{id}/reports?limit=N
func ReportHistoryHandler(events EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			writeError(w, http.StatusNotFound, msgHistoryDisabled)
			return
		}
		limit := defaultHistoryLimit
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, msgInvalidLimit)
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		evs, err := events.ListByKey(r.Context(), syncx.TypeGradeCalculated, chi.URLParam(r, "id"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]reportEntry, 0, len(evs))
		for _, e := range evs {
			out = append(out, reportEntry{EventID: e.ID, CreatedAt: e.CreatedAt, Report: json.RawMessage(e.DataJSON)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func recordFromRequest(w http.ResponseWriter, r *http.Request) (grading.StudentRecord, bool) {
	payload, err := decodePayload(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return grading.StudentRecord{}, false
	}
	rec, err := buildStudentRecord(chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return grading.StudentRecord{}, false
	}
	return rec, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if grading.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

package student

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/gradecalc/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Upsert(ctx context.Context, rec grading.StudentRecord) (grading.StudentRecord, error) {
	if err := validateID(rec.ID); err != nil {
		return grading.StudentRecord{}, err
	}
	rec = rec.Clone()
	evJSON, err := json.Marshal(rec.Evaluations)
	if err != nil {
		return grading.StudentRecord{}, err
	}
	votesJSON, err := json.Marshal(rec.AllYearsTeachers)
	if err != nil {
		return grading.StudentRecord{}, err
	}
	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx, `INSERT INTO students
		(id,evaluations_json,has_reached_minimum_classes,teacher_votes_json,allow_extra_points,manual_extra_points,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			evaluations_json=EXCLUDED.evaluations_json,
			has_reached_minimum_classes=EXCLUDED.has_reached_minimum_classes,
			teacher_votes_json=EXCLUDED.teacher_votes_json,
			allow_extra_points=EXCLUDED.allow_extra_points,
			manual_extra_points=EXCLUDED.manual_extra_points,
			updated_at=EXCLUDED.updated_at`,
		rec.ID, string(evJSON), boolToInt(rec.HasReachedMinimumClasses), string(votesJSON),
		boolToInt(rec.AllowExtraPoints), rec.ManualExtraPoints, now, now)
	if err != nil {
		return grading.StudentRecord{}, fmt.Errorf("upsert student %q: %w", rec.ID, err)
	}
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (grading.StudentRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,evaluations_json,has_reached_minimum_classes,teacher_votes_json,allow_extra_points,manual_extra_points
		FROM students WHERE id=$1`, id)
	rec, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.StudentRecord{}, ErrNotFound
		}
		return grading.StudentRecord{}, fmt.Errorf("get student %q: %w", id, err)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context) ([]grading.StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,evaluations_json,has_reached_minimum_classes,teacher_votes_json,allow_extra_points,manual_extra_points
		FROM students ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	out := []grading.StudentRecord{}
	for rows.Next() {
		rec, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("list students: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanStudent re-validates evaluations through Evaluation.UnmarshalJSON.
func scanStudent(row scanner) (grading.StudentRecord, error) {
	var (
		rec               grading.StudentRecord
		evJSON, vJSON     string
		minClasses, allow int64
	)
	if err := row.Scan(&rec.ID, &evJSON, &minClasses, &vJSON, &allow, &rec.ManualExtraPoints); err != nil {
		return grading.StudentRecord{}, err
	}
	if err := json.Unmarshal([]byte(evJSON), &rec.Evaluations); err != nil {
		return grading.StudentRecord{}, fmt.Errorf("decode evaluations: %w", err)
	}
	if err := json.Unmarshal([]byte(vJSON), &rec.AllYearsTeachers); err != nil {
		return grading.StudentRecord{}, fmt.Errorf("decode teacher votes: %w", err)
	}
	rec.HasReachedMinimumClasses = minClasses != 0
	rec.AllowExtraPoints = allow != 0
	return rec.Clone(), nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

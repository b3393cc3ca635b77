package student_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/gradecalc/internal/db"
	"github.com/mind-engage/gradecalc/internal/grading"
	"github.com/mind-engage/gradecalc/internal/student"
)

func openSQLite(t *testing.T) student.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return student.NewSQLStore(dbh, string(db.DriverSQLite))
}

func stores(t *testing.T) map[string]student.Store {
	return map[string]student.Store{
		"memory": student.NewInMemoryStore(),
		"sqlite": openSQLite(t),
	}
}

func record(t *testing.T, id string, score float64) grading.StudentRecord {
	t.Helper()
	ev, err := grading.NewEvaluation("Exam", score, 100)
	require.NoError(t, err)
	return grading.StudentRecord{
		ID:                       id,
		Evaluations:              []grading.Evaluation{ev},
		HasReachedMinimumClasses: true,
		AllYearsTeachers:         []bool{true, false},
		AllowExtraPoints:         true,
		ManualExtraPoints:        1.5,
	}
}

func TestStore_UpsertGet(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			in := record(t, "s-1", 15)
			out, err := st.Upsert(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, out)

			got, err := st.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Upsert(ctx, record(t, "s-1", 10))
			require.NoError(t, err)
			_, err = st.Upsert(ctx, record(t, "s-1", 19))
			require.NoError(t, err)

			got, err := st.Get(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, 19.0, got.Evaluations[0].Score())

			all, err := st.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_BlankIDRejected(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Upsert(ctx, record(t, "   ", 10))
			require.Error(t, err)
			assert.True(t, grading.IsValidation(err))
			assert.Contains(t, err.Error(), "código del estudiante es obligatorio")
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(context.Background(), "nobody")
			assert.ErrorIs(t, err, student.ErrNotFound)
		})
	}
}

func TestStore_ListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := st.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			for _, id := range []string{"b", "a", "c"} {
				_, err := st.Upsert(ctx, record(t, id, 12))
				require.NoError(t, err)
			}
			_, err = st.Upsert(ctx, record(t, "b", 14))
			require.NoError(t, err)

			all, err := st.List(ctx)
			require.NoError(t, err)
			ids := make([]string, 0, len(all))
			for _, r := range all {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, []string{"b", "a", "c"}, ids)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := student.NewInMemoryStore()
	_, err := st.Upsert(ctx, record(t, "s-1", 10))
	require.NoError(t, err)

	got, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	got.AllYearsTeachers[0] = false

	again, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, again.AllYearsTeachers)
}

func TestSQLStore_EmptySlicesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t)
	_, err := st.Upsert(ctx, grading.StudentRecord{ID: "empty"})
	require.NoError(t, err)

	got, err := st.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, got.Evaluations)
	assert.Empty(t, got.Evaluations)
	assert.NotNil(t, got.AllYearsTeachers)
	assert.False(t, got.HasReachedMinimumClasses)
}

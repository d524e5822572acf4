package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/service"
	"github.com/mmynk/studentfees/internal/storage"
)

// newTestStore connects to TEST_DATABASE_URL and empties the tables.
// Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.pool.Exec(ctx, "TRUNCATE payments, students, courses RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return store
}

func TestPostgresStore_Ledger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	course := &models.Course{Name: "Web Development", DurationMonths: 4, Fee: decimal.RequireFromString("35000")}
	require.NoError(t, store.CreateCourse(ctx, course))

	student := &models.Student{Name: "Amit Kumar", Email: "amit@email.com", CourseID: &course.ID}
	require.NoError(t, store.CreateStudent(ctx, student))

	err := store.CreateStudent(ctx, &models.Student{Name: "Dup", Email: "amit@email.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	got, err := store.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{student.ID}, got.StudentIDs)

	for _, p := range []*models.Payment{
		{StudentID: student.ID, Amount: decimal.RequireFromString("10000.50"), Kind: models.KindPayment},
		{StudentID: student.ID, Amount: decimal.RequireFromString("5000"), Kind: models.KindRefund, Note: "partial"},
	} {
		require.NoError(t, store.CreatePayment(ctx, p))
		assert.NotEmpty(t, p.Reference)
	}

	paid, err := store.SumPayments(ctx, student.ID, models.KindPayment)
	require.NoError(t, err)
	assert.True(t, paid.Equal(decimal.RequireFromString("10000.50")), "paid = %s", paid)

	history, err := store.ListPaymentsByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.KindRefund, history[0].Kind)

	_, err = store.GetStudent(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresStore_WithTxRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	student := &models.Student{Name: "Priya Singh", Email: "priya@email.com"}
	require.NoError(t, store.CreateStudent(ctx, student))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx storage.Store) error {
		student.Balance = decimal.NewFromInt(-100)
		if err := tx.UpdateStudent(ctx, student); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), "balance = %s", got.Balance)
}

func TestPostgresStore_ConcurrentLedgerWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fees := service.NewFeeService(store, nil)

	student := &models.Student{Name: "Rahul Verma", Email: "rahul@email.com"}
	require.NoError(t, store.CreateStudent(ctx, student))

	t.Run("payments do not lose balance updates", func(t *testing.T) {
		const writers = 20

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := fees.ProcessPayment(ctx, student.ID, decimal.NewFromInt(1), "")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := store.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(-writers)), "balance = %s", got.Balance)

		rec, err := fees.Reconcile(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, rec.Consistent(), "drift = %s", rec.Drift)
	})

	t.Run("concurrent refunds stay within the refundable total", func(t *testing.T) {
		// 20 paid so far; each refund takes 5, so only four can succeed.
		const refunds = 8

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < refunds; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := fees.ProcessRefund(ctx, student.ID, decimal.NewFromInt(5), "")
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				var limitErr *service.RefundLimitError
				assert.ErrorAs(t, err, &limitErr)
			}()
		}
		wg.Wait()

		assert.Equal(t, 4, succeeded)

		refunded, err := store.SumPayments(ctx, student.ID, models.KindRefund)
		require.NoError(t, err)
		assert.True(t, refunded.Equal(decimal.NewFromInt(20)), "refunded = %s", refunded)

		rec, err := fees.Reconcile(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, rec.Consistent(), "drift = %s", rec.Drift)
		assert.True(t, rec.Stored.IsZero(), "balance = %s", rec.Stored)
	})
}

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studentfees/internal/metrics"
	"github.com/mmynk/studentfees/internal/middleware"
	"github.com/mmynk/studentfees/internal/service"
	"github.com/mmynk/studentfees/internal/storage/sqlite"
)

// setupTestServer serves all three services from a temp SQLite database.
func setupTestServer(t *testing.T) (*Client, *prometheus.Registry) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	interceptors := connect.WithInterceptors(
		middleware.RequestID(),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(NewStudentServiceHandler(service.NewStudentService(store), interceptors))
	mux.Handle(NewCourseServiceHandler(service.NewCourseService(store), interceptors))
	mux.Handle(NewFeeServiceHandler(service.NewFeeService(store, m), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return NewClient(http.DefaultClient, server.URL), reg
}

func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect.Error, got %T", err)
	assert.Equal(t, want, connectErr.Code(), "message: %s", connectErr.Message())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFeeFlow(t *testing.T) {
	client, reg := setupTestServer(t)
	ctx := context.Background()

	course, err := client.AddCourse(ctx, &AddCourseRequest{Name: "Web Dev", DurationMonths: 4, Fee: dec("35000.0")})
	require.NoError(t, err)

	student, err := client.AddStudent(ctx, &AddStudentRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, client.EnrollStudent(ctx, &EnrollStudentRequest{StudentID: student.StudentID, CourseID: course.CourseID}))

	receipt, err := client.ProcessPayment(ctx, &LedgerRequest{StudentID: student.StudentID, Amount: dec("10000"), Note: "installment"})
	require.NoError(t, err)
	assert.True(t, receipt.Balance.Equal(dec("-10000")), "balance = %s", receipt.Balance)
	assert.Equal(t, "PAYMENT", receipt.Payment.Kind)
	assert.NotEmpty(t, receipt.Payment.Reference)

	receipt, err = client.ProcessRefund(ctx, &LedgerRequest{StudentID: student.StudentID, Amount: dec("5000"), Note: "partial"})
	require.NoError(t, err)
	assert.True(t, receipt.Balance.Equal(dec("-5000")), "balance = %s", receipt.Balance)

	_, err = client.ProcessRefund(ctx, &LedgerRequest{StudentID: student.StudentID, Amount: dec("6000"), Note: "too much"})
	requireCode(t, err, connect.CodeFailedPrecondition)
	assert.Contains(t, err.Error(), "available: 5000.00")

	summary, err := client.FeeSummary(ctx, student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "Web Dev", summary.CourseName)
	assert.True(t, summary.CourseFee.Equal(dec("35000")))
	assert.True(t, summary.TotalPaid.Equal(dec("10000")))
	assert.True(t, summary.TotalRefunded.Equal(dec("5000")))
	assert.True(t, summary.NetPaid.Equal(dec("5000")))
	assert.True(t, summary.Balance.Equal(dec("-5000")))

	history, err := client.PaymentHistory(ctx, student.StudentID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "REFUND", history[0].Kind)
	assert.Equal(t, "PAYMENT", history[1].Kind)

	rec, err := client.Reconcile(ctx, student.StudentID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 2, rec.Entries)
	assert.True(t, rec.TotalPaid.Equal(dec("10000")), "total_paid = %s", rec.TotalPaid)
	assert.True(t, rec.TotalRefunded.Equal(dec("5000")), "total_refunded = %s", rec.TotalRefunded)

	got, err := client.GetStudent(ctx, student.StudentID)
	require.NoError(t, err)
	require.NotNil(t, got.CourseID)
	assert.Equal(t, course.CourseID, *got.CourseID)
	assert.Equal(t, "Web Dev", got.CourseName)

	assert.Equal(t, 1.0, counterValue(t, reg, "studentfees_refunds_rejected_total"))

	count, err := testutil.GatherAndCount(reg, "studentfees_ledger_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per ledger kind")
}

// counterValue reads a single unlabelled counter from reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestStudentService_Errors(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	_, err := client.AddStudent(ctx, &AddStudentRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "duplicate email",
			call: func() error {
				_, err := client.AddStudent(ctx, &AddStudentRequest{Name: "B", Email: "a@x.com"})
				return err
			},
			want: connect.CodeAlreadyExists,
		},
		{
			name: "malformed email",
			call: func() error {
				_, err := client.AddStudent(ctx, &AddStudentRequest{Name: "B", Email: "not-an-email"})
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "missing name",
			call: func() error {
				_, err := client.AddStudent(ctx, &AddStudentRequest{Email: "b@x.com"})
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown student",
			call: func() error {
				_, err := client.GetStudent(ctx, 999)
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "enroll in unknown course",
			call: func() error {
				return client.EnrollStudent(ctx, &EnrollStudentRequest{StudentID: 1, CourseID: 999})
			},
			want: connect.CodeNotFound,
		},
		{
			name: "zero id",
			call: func() error {
				return client.DeleteStudent(ctx, 0)
			},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, tt.call(), tt.want)
		})
	}

	students, err := client.ListStudents(ctx, &ListStudentsRequest{})
	require.NoError(t, err)
	assert.Len(t, students, 1, "failed calls must not create students")
}

func TestCourseService_DeleteWithEnrollments(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	course, err := client.AddCourse(ctx, &AddCourseRequest{Name: "Go", DurationMonths: 3, Fee: dec("1000")})
	require.NoError(t, err)
	empty, err := client.AddCourse(ctx, &AddCourseRequest{Name: "Rust", DurationMonths: 3, Fee: dec("1000")})
	require.NoError(t, err)

	student, err := client.AddStudent(ctx, &AddStudentRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, client.EnrollStudent(ctx, &EnrollStudentRequest{StudentID: student.StudentID, CourseID: course.CourseID}))

	err = client.DeleteCourse(ctx, course.CourseID)
	requireCode(t, err, connect.CodeFailedPrecondition)

	require.NoError(t, client.DeleteCourse(ctx, empty.CourseID))

	courses, err := client.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, []int64{student.StudentID}, courses[0].StudentIDs)

	enrolled, err := client.ListStudents(ctx, &ListStudentsRequest{CourseID: &course.CourseID})
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "a@x.com", enrolled[0].Email)
}

func TestCourseService_Validation(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	_, err := client.AddCourse(ctx, &AddCourseRequest{Name: "Go", DurationMonths: 0, Fee: dec("1000")})
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = client.AddCourse(ctx, &AddCourseRequest{Name: "Go", DurationMonths: 3, Fee: dec("-1")})
	requireCode(t, err, connect.CodeInvalidArgument)
	assert.Contains(t, err.Error(), "fee")

	err = client.UpdateCourse(ctx, &UpdateCourseRequest{CourseID: 42, Name: "Go", DurationMonths: 3, Fee: dec("1")})
	requireCode(t, err, connect.CodeNotFound)
}

func TestFeeService_Errors(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	student, err := client.AddStudent(ctx, &AddStudentRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = client.ProcessPayment(ctx, &LedgerRequest{StudentID: student.StudentID, Amount: dec("0")})
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = client.ProcessPayment(ctx, &LedgerRequest{StudentID: 999, Amount: dec("-1")})
	requireCode(t, err, connect.CodeNotFound)

	_, err = client.PaymentHistory(ctx, 999)
	requireCode(t, err, connect.CodeNotFound)

	history, err := client.PaymentHistory(ctx, student.StudentID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRequestIDHeader(t *testing.T) {
	client, _ := setupTestServer(t)

	// The header survives the round trip on errors too.
	_, err := client.GetStudent(context.Background(), 999)
	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.NotEmpty(t, connectErr.Meta().Get(middleware.RequestIDHeader))
}

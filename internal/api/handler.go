package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/service"
)

// Service paths, mounted on an http.ServeMux.
const (
	StudentServicePath = "/studentfees.v1.StudentService/"
	CourseServicePath  = "/studentfees.v1.CourseService/"
	FeeServicePath     = "/studentfees.v1.FeeService/"
)

// Fully-qualified procedure names.
const (
	AddStudentProcedure    = StudentServicePath + "AddStudent"
	EnrollStudentProcedure = StudentServicePath + "EnrollStudent"
	UpdateStudentProcedure = StudentServicePath + "UpdateStudent"
	DeleteStudentProcedure = StudentServicePath + "DeleteStudent"
	GetStudentProcedure    = StudentServicePath + "GetStudent"
	ListStudentsProcedure  = StudentServicePath + "ListStudents"

	AddCourseProcedure    = CourseServicePath + "AddCourse"
	UpdateCourseProcedure = CourseServicePath + "UpdateCourse"
	DeleteCourseProcedure = CourseServicePath + "DeleteCourse"
	GetCourseProcedure    = CourseServicePath + "GetCourse"
	ListCoursesProcedure  = CourseServicePath + "ListCourses"

	ProcessPaymentProcedure = FeeServicePath + "ProcessPayment"
	ProcessRefundProcedure  = FeeServicePath + "ProcessRefund"
	PaymentHistoryProcedure = FeeServicePath + "PaymentHistory"
	FeeSummaryProcedure     = FeeServicePath + "FeeSummary"
	ReconcileProcedure      = FeeServicePath + "Reconcile"
)

// unary builds a Connect handler that validates the request, calls fn and
// maps its error.
func unary[Req, Res any](procedure string, fn func(context.Context, *Req) (*Res, error), opts []connect.HandlerOption) http.Handler {
	return connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			if err := validateRequest(req.Msg); err != nil {
				return nil, err
			}
			res, err := fn(ctx, req.Msg)
			if err != nil {
				return nil, toConnectError(procedure, err)
			}
			return connect.NewResponse(res), nil
		},
		opts...,
	)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

// NewStudentServiceHandler returns the path and handler for the student service.
func NewStudentServiceHandler(svc *service.StudentService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()

	mux.Handle(AddStudentProcedure, unary(AddStudentProcedure,
		func(ctx context.Context, req *AddStudentRequest) (*AddStudentResponse, error) {
			id, err := svc.AddStudent(ctx, req.Name, req.Email)
			if err != nil {
				return nil, err
			}
			return &AddStudentResponse{StudentID: id}, nil
		}, opts))

	mux.Handle(EnrollStudentProcedure, unary(EnrollStudentProcedure,
		func(ctx context.Context, req *EnrollStudentRequest) (*Empty, error) {
			return &Empty{}, svc.EnrollStudent(ctx, req.StudentID, req.CourseID)
		}, opts))

	mux.Handle(UpdateStudentProcedure, unary(UpdateStudentProcedure,
		func(ctx context.Context, req *UpdateStudentRequest) (*Empty, error) {
			return &Empty{}, svc.UpdateStudent(ctx, req.StudentID, req.Name, req.Email)
		}, opts))

	mux.Handle(DeleteStudentProcedure, unary(DeleteStudentProcedure,
		func(ctx context.Context, req *StudentIDRequest) (*Empty, error) {
			return &Empty{}, svc.DeleteStudent(ctx, req.StudentID)
		}, opts))

	mux.Handle(GetStudentProcedure, unary(GetStudentProcedure,
		func(ctx context.Context, req *StudentIDRequest) (*GetStudentResponse, error) {
			student, err := svc.GetStudent(ctx, req.StudentID)
			if err != nil {
				return nil, err
			}
			return &GetStudentResponse{Student: toStudent(student)}, nil
		}, opts))

	mux.Handle(ListStudentsProcedure, unary(ListStudentsProcedure,
		func(ctx context.Context, req *ListStudentsRequest) (*ListStudentsResponse, error) {
			var students []*models.Student
			var err error
			if req.CourseID != nil {
				students, err = svc.ListStudentsByCourse(ctx, *req.CourseID)
			} else {
				students, err = svc.ListStudents(ctx)
			}
			if err != nil {
				return nil, err
			}
			return &ListStudentsResponse{Students: toStudents(students)}, nil
		}, opts))

	return StudentServicePath, mux
}

// NewCourseServiceHandler returns the path and handler for the course service.
func NewCourseServiceHandler(svc *service.CourseService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()

	mux.Handle(AddCourseProcedure, unary(AddCourseProcedure,
		func(ctx context.Context, req *AddCourseRequest) (*AddCourseResponse, error) {
			id, err := svc.AddCourse(ctx, req.Name, req.DurationMonths, req.Fee)
			if err != nil {
				return nil, err
			}
			return &AddCourseResponse{CourseID: id}, nil
		}, opts))

	mux.Handle(UpdateCourseProcedure, unary(UpdateCourseProcedure,
		func(ctx context.Context, req *UpdateCourseRequest) (*Empty, error) {
			return &Empty{}, svc.UpdateCourse(ctx, req.CourseID, req.Name, req.DurationMonths, req.Fee)
		}, opts))

	mux.Handle(DeleteCourseProcedure, unary(DeleteCourseProcedure,
		func(ctx context.Context, req *CourseIDRequest) (*Empty, error) {
			return &Empty{}, svc.DeleteCourse(ctx, req.CourseID)
		}, opts))

	mux.Handle(GetCourseProcedure, unary(GetCourseProcedure,
		func(ctx context.Context, req *CourseIDRequest) (*GetCourseResponse, error) {
			course, err := svc.GetCourse(ctx, req.CourseID)
			if err != nil {
				return nil, err
			}
			return &GetCourseResponse{Course: toCourse(course)}, nil
		}, opts))

	mux.Handle(ListCoursesProcedure, unary(ListCoursesProcedure,
		func(ctx context.Context, req *ListCoursesRequest) (*ListCoursesResponse, error) {
			courses, err := svc.ListCourses(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*Course, 0, len(courses))
			for _, c := range courses {
				out = append(out, toCourse(c))
			}
			return &ListCoursesResponse{Courses: out}, nil
		}, opts))

	return CourseServicePath, mux
}

// NewFeeServiceHandler returns the path and handler for the fee service.
func NewFeeServiceHandler(svc *service.FeeService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()

	mux.Handle(ProcessPaymentProcedure, unary(ProcessPaymentProcedure,
		func(ctx context.Context, req *LedgerRequest) (*ReceiptResponse, error) {
			receipt, err := svc.ProcessPayment(ctx, req.StudentID, req.Amount, req.Note)
			if err != nil {
				return nil, err
			}
			return toReceipt(receipt), nil
		}, opts))

	mux.Handle(ProcessRefundProcedure, unary(ProcessRefundProcedure,
		func(ctx context.Context, req *LedgerRequest) (*ReceiptResponse, error) {
			receipt, err := svc.ProcessRefund(ctx, req.StudentID, req.Amount, req.Note)
			if err != nil {
				return nil, err
			}
			return toReceipt(receipt), nil
		}, opts))

	mux.Handle(PaymentHistoryProcedure, unary(PaymentHistoryProcedure,
		func(ctx context.Context, req *StudentIDRequest) (*PaymentHistoryResponse, error) {
			payments, err := svc.PaymentHistory(ctx, req.StudentID)
			if err != nil {
				return nil, err
			}
			out := make([]*Payment, 0, len(payments))
			for _, p := range payments {
				out = append(out, toPayment(p))
			}
			return &PaymentHistoryResponse{Payments: out}, nil
		}, opts))

	mux.Handle(FeeSummaryProcedure, unary(FeeSummaryProcedure,
		func(ctx context.Context, req *StudentIDRequest) (*FeeSummaryResponse, error) {
			s, err := svc.FeeSummary(ctx, req.StudentID)
			if err != nil {
				return nil, err
			}
			return &FeeSummaryResponse{
				StudentID:     s.StudentID,
				StudentName:   s.StudentName,
				CourseName:    s.CourseName,
				CourseFee:     s.CourseFee,
				TotalPaid:     s.TotalPaid,
				TotalRefunded: s.TotalRefunded,
				NetPaid:       s.NetPaid,
				Balance:       s.Balance,
			}, nil
		}, opts))

	mux.Handle(ReconcileProcedure, unary(ReconcileProcedure,
		func(ctx context.Context, req *StudentIDRequest) (*ReconcileResponse, error) {
			rec, err := svc.Reconcile(ctx, req.StudentID)
			if err != nil {
				return nil, err
			}
			return &ReconcileResponse{
				StudentID:     rec.StudentID,
				Entries:       rec.Entries,
				Stored:        rec.Stored,
				Expected:      rec.Expected,
				Drift:         rec.Drift,
				TotalPaid:     rec.Paid,
				TotalRefunded: rec.Refunded,
				Consistent:    rec.Consistent(),
			}, nil
		}, opts))

	return FeeServicePath, mux
}

package api

import (
	"context"

	"connectrpc.com/connect"
)

// Client calls all three services on one base URL.
type Client struct {
	addStudent     *connect.Client[AddStudentRequest, AddStudentResponse]
	enrollStudent  *connect.Client[EnrollStudentRequest, Empty]
	updateStudent  *connect.Client[UpdateStudentRequest, Empty]
	deleteStudent  *connect.Client[StudentIDRequest, Empty]
	getStudent     *connect.Client[StudentIDRequest, GetStudentResponse]
	listStudents   *connect.Client[ListStudentsRequest, ListStudentsResponse]
	addCourse      *connect.Client[AddCourseRequest, AddCourseResponse]
	updateCourse   *connect.Client[UpdateCourseRequest, Empty]
	deleteCourse   *connect.Client[CourseIDRequest, Empty]
	getCourse      *connect.Client[CourseIDRequest, GetCourseResponse]
	listCourses    *connect.Client[ListCoursesRequest, ListCoursesResponse]
	processPayment *connect.Client[LedgerRequest, ReceiptResponse]
	processRefund  *connect.Client[LedgerRequest, ReceiptResponse]
	paymentHistory *connect.Client[StudentIDRequest, PaymentHistoryResponse]
	feeSummary     *connect.Client[StudentIDRequest, FeeSummaryResponse]
	reconcile      *connect.Client[StudentIDRequest, ReconcileResponse]
}

// NewClient creates a Client for the server at baseURL (e.g. http://localhost:8080).
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		addStudent:     connect.NewClient[AddStudentRequest, AddStudentResponse](httpClient, baseURL+AddStudentProcedure, opts...),
		enrollStudent:  connect.NewClient[EnrollStudentRequest, Empty](httpClient, baseURL+EnrollStudentProcedure, opts...),
		updateStudent:  connect.NewClient[UpdateStudentRequest, Empty](httpClient, baseURL+UpdateStudentProcedure, opts...),
		deleteStudent:  connect.NewClient[StudentIDRequest, Empty](httpClient, baseURL+DeleteStudentProcedure, opts...),
		getStudent:     connect.NewClient[StudentIDRequest, GetStudentResponse](httpClient, baseURL+GetStudentProcedure, opts...),
		listStudents:   connect.NewClient[ListStudentsRequest, ListStudentsResponse](httpClient, baseURL+ListStudentsProcedure, opts...),
		addCourse:      connect.NewClient[AddCourseRequest, AddCourseResponse](httpClient, baseURL+AddCourseProcedure, opts...),
		updateCourse:   connect.NewClient[UpdateCourseRequest, Empty](httpClient, baseURL+UpdateCourseProcedure, opts...),
		deleteCourse:   connect.NewClient[CourseIDRequest, Empty](httpClient, baseURL+DeleteCourseProcedure, opts...),
		getCourse:      connect.NewClient[CourseIDRequest, GetCourseResponse](httpClient, baseURL+GetCourseProcedure, opts...),
		listCourses:    connect.NewClient[ListCoursesRequest, ListCoursesResponse](httpClient, baseURL+ListCoursesProcedure, opts...),
		processPayment: connect.NewClient[LedgerRequest, ReceiptResponse](httpClient, baseURL+ProcessPaymentProcedure, opts...),
		processRefund:  connect.NewClient[LedgerRequest, ReceiptResponse](httpClient, baseURL+ProcessRefundProcedure, opts...),
		paymentHistory: connect.NewClient[StudentIDRequest, PaymentHistoryResponse](httpClient, baseURL+PaymentHistoryProcedure, opts...),
		feeSummary:     connect.NewClient[StudentIDRequest, FeeSummaryResponse](httpClient, baseURL+FeeSummaryProcedure, opts...),
		reconcile:      connect.NewClient[StudentIDRequest, ReconcileResponse](httpClient, baseURL+ReconcileProcedure, opts...),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) AddStudent(ctx context.Context, req *AddStudentRequest) (*AddStudentResponse, error) {
	return call(ctx, c.addStudent, req)
}

func (c *Client) EnrollStudent(ctx context.Context, req *EnrollStudentRequest) error {
	_, err := call(ctx, c.enrollStudent, req)
	return err
}

func (c *Client) UpdateStudent(ctx context.Context, req *UpdateStudentRequest) error {
	_, err := call(ctx, c.updateStudent, req)
	return err
}

func (c *Client) DeleteStudent(ctx context.Context, studentID int64) error {
	_, err := call(ctx, c.deleteStudent, &StudentIDRequest{StudentID: studentID})
	return err
}

func (c *Client) GetStudent(ctx context.Context, studentID int64) (*Student, error) {
	resp, err := call(ctx, c.getStudent, &StudentIDRequest{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	return resp.Student, nil
}

func (c *Client) ListStudents(ctx context.Context, req *ListStudentsRequest) ([]*Student, error) {
	resp, err := call(ctx, c.listStudents, req)
	if err != nil {
		return nil, err
	}
	return resp.Students, nil
}

func (c *Client) AddCourse(ctx context.Context, req *AddCourseRequest) (*AddCourseResponse, error) {
	return call(ctx, c.addCourse, req)
}

func (c *Client) UpdateCourse(ctx context.Context, req *UpdateCourseRequest) error {
	_, err := call(ctx, c.updateCourse, req)
	return err
}

func (c *Client) DeleteCourse(ctx context.Context, courseID int64) error {
	_, err := call(ctx, c.deleteCourse, &CourseIDRequest{CourseID: courseID})
	return err
}

func (c *Client) GetCourse(ctx context.Context, courseID int64) (*Course, error) {
	resp, err := call(ctx, c.getCourse, &CourseIDRequest{CourseID: courseID})
	if err != nil {
		return nil, err
	}
	return resp.Course, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]*Course, error) {
	resp, err := call(ctx, c.listCourses, &ListCoursesRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (c *Client) ProcessPayment(ctx context.Context, req *LedgerRequest) (*ReceiptResponse, error) {
	return call(ctx, c.processPayment, req)
}

func (c *Client) ProcessRefund(ctx context.Context, req *LedgerRequest) (*ReceiptResponse, error) {
	return call(ctx, c.processRefund, req)
}

func (c *Client) PaymentHistory(ctx context.Context, studentID int64) ([]*Payment, error) {
	resp, err := call(ctx, c.paymentHistory, &StudentIDRequest{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	return resp.Payments, nil
}

func (c *Client) FeeSummary(ctx context.Context, studentID int64) (*FeeSummaryResponse, error) {
	return call(ctx, c.feeSummary, &StudentIDRequest{StudentID: studentID})
}

func (c *Client) Reconcile(ctx context.Context, studentID int64) (*ReconcileResponse, error) {
	return call(ctx, c.reconcile, &StudentIDRequest{StudentID: studentID})
}

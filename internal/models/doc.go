// Package models defines the core domain records for studentfees.
//
// # Records
//
//   - Student: a person who may be enrolled in one course and carries a fee balance
//   - Course: a paid program students enroll in
//   - Payment: one append-only ledger entry (a payment or a refund) for a student
//
// # Design Principles
//
//  1. **Plain records**: models carry no behavior beyond small display helpers
//  2. **IDs, not pointers**: relationships are foreign-key fields (Student.CourseID,
//     Payment.StudentID); the service layer decides what to load
//  3. **Exact money**: all amounts are decimal.Decimal, never float64
//  4. **Ledger is authoritative**: Student.Balance is a cache of the payment ledger
package models

package shell

import (
	"context"
)

func (s *Shell) studentMenu(ctx context.Context) error {
	s.println("\n--- Student Management ---")
	s.println("1. Add New Student")
	s.println("2. Enroll Student in Course")
	s.println("3. Update Student")
	s.println("4. Delete Student")
	s.println("5. View All Students")
	s.println("6. View Student Details")
	s.println("7. Back to Main Menu")

	choice, err := s.readInt("Enter your choice: ")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		return s.addStudent(ctx)
	case 2:
		return s.enrollStudent(ctx)
	case 3:
		return s.updateStudent(ctx)
	case 4:
		return s.deleteStudent(ctx)
	case 5:
		return s.listStudents(ctx)
	case 6:
		return s.showStudent(ctx)
	case 7:
		return nil
	default:
		s.println("Invalid choice!")
		return nil
	}
}

func (s *Shell) courseMenu(ctx context.Context) error {
	s.println("\n--- Course Management ---")
	s.println("1. Add New Course")
	s.println("2. Update Course")
	s.println("3. Delete Course")
	s.println("4. View All Courses")
	s.println("5. View Course Details")
	s.println("6. Back to Main Menu")

	choice, err := s.readInt("Enter your choice: ")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		return s.addCourse(ctx)
	case 2:
		return s.updateCourse(ctx)
	case 3:
		return s.deleteCourse(ctx)
	case 4:
		return s.listCourses(ctx)
	case 5:
		return s.showCourse(ctx)
	case 6:
		return nil
	default:
		s.println("Invalid choice!")
		return nil
	}
}

func (s *Shell) feeMenu(ctx context.Context) error {
	s.println("\n--- Fee Payment & Refund ---")
	s.println("1. Process Payment")
	s.println("2. Process Refund")
	s.println("3. View Payment History")
	s.println("4. View Fee Summary")
	s.println("5. Back to Main Menu")

	choice, err := s.readInt("Enter your choice: ")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		return s.processPayment(ctx)
	case 2:
		return s.processRefund(ctx)
	case 3:
		return s.paymentHistory(ctx)
	case 4:
		return s.feeSummary(ctx)
	case 5:
		return nil
	default:
		s.println("Invalid choice!")
		return nil
	}
}

func (s *Shell) reportMenu(ctx context.Context) error {
	s.println("\n--- Reports ---")
	s.println("1. Students by Course")
	s.println("2. All Students with Details")
	s.println("3. All Courses with Details")
	s.println("4. Ledger Reconciliation")
	s.println("5. Back to Main Menu")

	choice, err := s.readInt("Enter your choice: ")
	if err != nil {
		return err
	}

	switch choice {
	case 1:
		return s.studentsByCourse(ctx)
	case 2:
		return s.listStudents(ctx)
	case 3:
		return s.listCourses(ctx)
	case 4:
		return s.reconcileAll(ctx)
	case 5:
		return nil
	default:
		s.println("Invalid choice!")
		return nil
	}
}

// Students

func (s *Shell) addStudent(ctx context.Context) error {
	s.println("\n=== Add New Student ===")
	name, err := s.readLine("Enter name: ")
	if err != nil {
		return err
	}
	email, err := s.readLine("Enter email: ")
	if err != nil {
		return err
	}
	if err := s.checkEmail(email); err != nil {
		return err
	}

	id, err := s.svc.Students.AddStudent(ctx, name, email)
	if err != nil {
		return err
	}
	s.printf("Student added successfully with ID: %d\n", id)
	return nil
}

func (s *Shell) enrollStudent(ctx context.Context) error {
	s.println("\n=== Enroll Student in Course ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	courseID, err := s.readID("Enter Course ID: ")
	if err != nil {
		return err
	}

	if err := s.svc.Students.EnrollStudent(ctx, studentID, courseID); err != nil {
		return err
	}
	course, err := s.svc.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	s.printf("Student enrolled in %s successfully!\n", course.Name)
	return nil
}

func (s *Shell) updateStudent(ctx context.Context) error {
	s.println("\n=== Update Student ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	name, err := s.readLine("Enter new name: ")
	if err != nil {
		return err
	}
	email, err := s.readLine("Enter new email: ")
	if err != nil {
		return err
	}
	if err := s.checkEmail(email); err != nil {
		return err
	}

	if err := s.svc.Students.UpdateStudent(ctx, studentID, name, email); err != nil {
		return err
	}
	s.println("Student updated successfully!")
	return nil
}

func (s *Shell) deleteStudent(ctx context.Context) error {
	s.println("\n=== Delete Student ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	ok, err := s.confirm()
	if err != nil {
		return err
	}
	if !ok {
		s.println("Deletion cancelled.")
		return nil
	}

	if err := s.svc.Students.DeleteStudent(ctx, studentID); err != nil {
		return err
	}
	s.println("Student deleted successfully!")
	return nil
}

func (s *Shell) listStudents(ctx context.Context) error {
	s.println("\n=== All Students ===")
	students, err := s.svc.Students.ListStudents(ctx)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		s.println("No students found.")
		return nil
	}
	for _, student := range students {
		s.println(student)
	}
	return nil
}

func (s *Shell) showStudent(ctx context.Context) error {
	s.println("\n=== Student Details ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	student, err := s.svc.Students.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	s.println(student)
	return nil
}

// Courses

func (s *Shell) addCourse(ctx context.Context) error {
	s.println("\n=== Add New Course ===")
	name, err := s.readLine("Enter course name: ")
	if err != nil {
		return err
	}
	months, err := s.readInt("Enter duration (in months): ")
	if err != nil {
		return err
	}
	fee, err := s.readAmount("Enter fee: ")
	if err != nil {
		return err
	}

	id, err := s.svc.Courses.AddCourse(ctx, name, months, fee)
	if err != nil {
		return err
	}
	s.printf("Course added successfully with ID: %d\n", id)
	return nil
}

func (s *Shell) updateCourse(ctx context.Context) error {
	s.println("\n=== Update Course ===")
	courseID, err := s.readID("Enter Course ID: ")
	if err != nil {
		return err
	}
	name, err := s.readLine("Enter new course name: ")
	if err != nil {
		return err
	}
	months, err := s.readInt("Enter new duration (in months): ")
	if err != nil {
		return err
	}
	fee, err := s.readAmount("Enter new fee: ")
	if err != nil {
		return err
	}

	if err := s.svc.Courses.UpdateCourse(ctx, courseID, name, months, fee); err != nil {
		return err
	}
	s.println("Course updated successfully!")
	return nil
}

func (s *Shell) deleteCourse(ctx context.Context) error {
	s.println("\n=== Delete Course ===")
	courseID, err := s.readID("Enter Course ID: ")
	if err != nil {
		return err
	}
	ok, err := s.confirm()
	if err != nil {
		return err
	}
	if !ok {
		s.println("Deletion cancelled.")
		return nil
	}

	if err := s.svc.Courses.DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	s.println("Course deleted successfully!")
	return nil
}

func (s *Shell) listCourses(ctx context.Context) error {
	s.println("\n=== All Courses ===")
	courses, err := s.svc.Courses.ListCourses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		s.println("No courses found.")
		return nil
	}
	for _, course := range courses {
		s.println(course)
	}
	return nil
}

func (s *Shell) showCourse(ctx context.Context) error {
	s.println("\n=== Course Details ===")
	courseID, err := s.readID("Enter Course ID: ")
	if err != nil {
		return err
	}
	course, err := s.svc.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	s.println(course)
	return nil
}

// Fees

func (s *Shell) processPayment(ctx context.Context) error {
	s.println("\n=== Process Payment ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	amount, err := s.readAmount("Enter payment amount: ")
	if err != nil {
		return err
	}
	description, err := s.readLine("Enter description: ")
	if err != nil {
		return err
	}

	receipt, err := s.svc.Fees.ProcessPayment(ctx, studentID, amount, description)
	if err != nil {
		return err
	}
	s.printf("Payment of %s processed successfully!\n", money(amount))
	s.printf("Receipt: %s\n", receipt.Payment.Reference)
	s.printf("New balance: %s\n", money(receipt.Balance))
	return nil
}

func (s *Shell) processRefund(ctx context.Context) error {
	s.println("\n=== Process Refund ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	amount, err := s.readAmount("Enter refund amount: ")
	if err != nil {
		return err
	}
	reason, err := s.readLine("Enter reason: ")
	if err != nil {
		return err
	}

	receipt, err := s.svc.Fees.ProcessRefund(ctx, studentID, amount, reason)
	if err != nil {
		return err
	}
	s.printf("Refund of %s processed successfully!\n", money(amount))
	s.printf("Receipt: %s\n", receipt.Payment.Reference)
	s.printf("New balance: %s\n", money(receipt.Balance))
	return nil
}

func (s *Shell) paymentHistory(ctx context.Context) error {
	s.println("\n=== Payment History ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	payments, err := s.svc.Fees.PaymentHistory(ctx, studentID)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		s.println("No payment history found.")
		return nil
	}
	for _, payment := range payments {
		s.println(payment)
	}
	return nil
}

func (s *Shell) feeSummary(ctx context.Context) error {
	s.println("\n=== Fee Summary ===")
	studentID, err := s.readID("Enter Student ID: ")
	if err != nil {
		return err
	}
	summary, err := s.svc.Fees.FeeSummary(ctx, studentID)
	if err != nil {
		return err
	}

	s.printf("\n===== Fee Summary for %s =====\n", summary.StudentName)
	if summary.CourseName != "" {
		s.printf("Course: %s\n", summary.CourseName)
	}
	s.printf("Course Fee: %s\n", money(summary.CourseFee))
	s.printf("Total Paid: %s\n", money(summary.TotalPaid))
	s.printf("Total Refunded: %s\n", money(summary.TotalRefunded))
	s.printf("Net Paid: %s\n", money(summary.NetPaid))
	s.printf("Current Balance: %s\n", money(summary.Balance))
	s.println("==========================================")
	return nil
}

// Reports

func (s *Shell) studentsByCourse(ctx context.Context) error {
	s.println("\n=== Students by Course ===")
	courseID, err := s.readID("Enter Course ID: ")
	if err != nil {
		return err
	}
	students, err := s.svc.Students.ListStudentsByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		s.println("No students enrolled in this course.")
		return nil
	}
	for _, student := range students {
		s.println(student)
	}
	return nil
}

// reconcileAll checks every student's stored balance against the ledger.
func (s *Shell) reconcileAll(ctx context.Context) error {
	s.println("\n=== Ledger Reconciliation ===")
	students, err := s.svc.Students.ListStudents(ctx)
	if err != nil {
		return err
	}

	drifted := 0
	for _, student := range students {
		rec, err := s.svc.Fees.Reconcile(ctx, student.ID)
		if err != nil {
			return err
		}
		if rec.Consistent() {
			continue
		}
		drifted++
		s.printf("Student %d (%s): stored %s, ledger %s, drift %s (paid %s, refunded %s over %d entries)\n",
			student.ID, student.Name, money(rec.Stored), money(rec.Expected), money(rec.Drift),
			money(rec.Paid), money(rec.Refunded), rec.Entries)
	}

	if drifted == 0 {
		s.printf("All %d balances match the ledger.\n", len(students))
	} else {
		s.printf("%d of %d balances differ from the ledger.\n", drifted, len(students))
	}
	return nil
}

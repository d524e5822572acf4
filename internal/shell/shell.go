// Package shell implements the menu-driven text interface.
//
// The shell reads one answer per line. Numeric prompts repeat with
// "Invalid input!" until they get a number, errors from the services are
// printed as "Error: <message>", and end of input ends the session.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/service"
)

// Services are the operations the shell drives.
type Services struct {
	Students *service.StudentService
	Courses  *service.CourseService
	Fees     *service.FeeService
}

// Shell is one interactive session.
type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	svc      Services
	validate *validator.Validate
}

// New creates a shell reading answers from in and writing to out.
func New(in io.Reader, out io.Writer, svc Services) *Shell {
	return &Shell{
		in:       bufio.NewReader(in),
		out:      out,
		svc:      svc,
		validate: validator.New(),
	}
}

// Run shows the main menu until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	s.println("==============================================")
	s.println("   ONLINE STUDENT MANAGEMENT SYSTEM")
	s.println("==============================================")

	for {
		s.println("\n========== MAIN MENU ==========")
		s.println("1. Student Management")
		s.println("2. Course Management")
		s.println("3. Fee Payment & Refund")
		s.println("4. View Reports")
		s.println("5. Exit")
		s.println("================================")

		choice, err := s.readInt("Enter your choice: ")
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case 1:
			err = s.studentMenu(ctx)
		case 2:
			err = s.courseMenu(ctx)
		case 3:
			err = s.feeMenu(ctx)
		case 4:
			err = s.reportMenu(ctx)
		case 5:
			s.println("\nThank you for using Student Management System!")
			return nil
		default:
			s.println("Invalid choice! Please try again.")
		}
		if err != nil && !isInputError(err) {
			s.printf("\nError: %s\n", err)
			err = nil
		}
		if err != nil {
			return s.finish(err)
		}

		if _, err := s.readLine("\nPress Enter to continue..."); err != nil {
			return s.finish(err)
		}
	}
}

// finish turns end of input into a clean exit.
func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.println()
		return nil
	}
	return err
}

// inputError marks failures reading the session input, as opposed to
// failures reported by the services.
type inputError struct{ err error }

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func isInputError(err error) bool {
	var ie *inputError
	return errors.As(err, &ie)
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// readLine prints prompt and returns the next line without its newline.
func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", &inputError{err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readParsed prompts until parse accepts the trimmed answer.
func readParsed[T any](s *Shell, prompt string, parse func(string) (T, error)) (T, error) {
	p := prompt
	for {
		line, err := s.readLine(p)
		if err != nil {
			var zero T
			return zero, err
		}
		if v, err := parse(strings.TrimSpace(line)); err == nil {
			return v, nil
		}
		slog.Debug("Rejected input", "prompt", prompt, "input", line)
		p = "Invalid input! " + prompt
	}
}

func (s *Shell) readInt(prompt string) (int, error) {
	return readParsed(s, prompt, strconv.Atoi)
}

func (s *Shell) readID(prompt string) (int64, error) {
	return readParsed(s, prompt, func(v string) (int64, error) {
		return strconv.ParseInt(v, 10, 64)
	})
}

func (s *Shell) readAmount(prompt string) (decimal.Decimal, error) {
	return readParsed(s, prompt, decimal.NewFromString)
}

// confirm asks for a yes/no answer. Anything but "yes" declines.
func (s *Shell) confirm() (bool, error) {
	answer, err := s.readLine("Are you sure? (yes/no): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
}

// checkEmail rejects malformed addresses before they reach the service.
func (s *Shell) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email address: %q", email)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return "Rs." + d.StringFixed(2)
}

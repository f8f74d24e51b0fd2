package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusfees/fee-management-api/internal/models"
)

// StudentRepository provides persistence for the student roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns roster entries matching the filter plus the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR reg_no ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Department != "" {
		where = append(where, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Semester != nil {
		where = append(where, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	orderBy := "reg_no ASC"
	if filter.SortBy == "name" {
		orderBy = "name ASC"
		if strings.EqualFold(filter.SortOrder, "desc") {
			orderBy = "name DESC"
		}
	}

	query := fmt.Sprintf(`SELECT id, reg_no, name, email, year_of_study, semester, department, contact_number, photo
FROM students WHERE %s ORDER BY %s LIMIT %d OFFSET %d`, whereClause, orderBy, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByRegNo returns the student with the exact registration number.
func (r *StudentRepository) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	const query = `SELECT id, reg_no, name, email, year_of_study, semester, department, contact_number, photo
FROM students WHERE reg_no = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, regNo); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRegNo reports whether a roster entry with regNo already exists.
func (r *StudentRepository) ExistsByRegNo(ctx context.Context, regNo string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM students WHERE reg_no = $1)", regNo); err != nil {
		return false, fmt.Errorf("check reg_no: %w", err)
	}
	return exists, nil
}

// Create inserts a new roster entry.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, reg_no, name, email, year_of_study, semester, department, contact_number, photo, created_at)
VALUES (:id, :reg_no, :name, :email, :year_of_study, :semester, :department, :contact_number, :photo, :created_at)`
	arg := struct {
		models.Student
		CreatedAt time.Time `db:"created_at"`
	}{Student: *student, CreatedAt: time.Now().UTC()}
	if _, err := r.db.NamedExecContext(ctx, query, arg); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FeeStatus returns the per-semester fee ledger for a student.
func (r *StudentRepository) FeeStatus(ctx context.Context, studentID string) ([]models.FeeStatusEntry, error) {
	const query = `SELECT id, student_id, semester, amount, paid, due_date, paid_date
FROM fee_status WHERE student_id = $1 ORDER BY semester ASC`
	var entries []models.FeeStatusEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list fee status: %w", err)
	}
	return entries, nil
}

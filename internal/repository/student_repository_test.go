package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfees/fee-management-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "reg_no", "name", "email", "year_of_study", "semester", "department", "contact_number", "photo"}).
		AddRow("1", "21A21A05D3", "Abhilash", "akh@gmail.com", 4, 8, "CSE", "9986636322", "/assets/21A21A05D3.png")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, reg_no, name, email, year_of_study, semester, department, contact_number, photo\nFROM students WHERE 1=1 ORDER BY reg_no ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "21A21A05D3", students[0].RegNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByRegNo(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "reg_no", "name", "email", "year_of_study", "semester", "department", "contact_number", "photo"}).
		AddRow("2", "21A21A05D4", "K Dedeepya", "dedeepya@gmail.com", 4, 8, "CSE", "8536727326", "")
	mock.ExpectQuery("SELECT id, reg_no, name").
		WithArgs("21A21A05D4").
		WillReturnRows(rows)

	student, err := repo.FindByRegNo(context.Background(), "21A21A05D4")
	require.NoError(t, err)
	assert.Equal(t, "K Dedeepya", student.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Student{RegNo: "21A21A05E2", Name: "New Student", Email: "new@gmail.com", YearOfStudy: 4, Semester: 8, Department: "CSE", ContactNumber: "9000000000"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

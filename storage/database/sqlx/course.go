package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

const courseColumns = "id, title, description, teacher_id, created_at, updated_at"

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := repo.db.Rebind(`
		INSERT INTO courses (title, description, teacher_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q, crs.Title, crs.Description, crs.TeacherID, crs.CreatedAt, crs.UpdatedAt).
		Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, orderings []core.DBOrdering) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	q := "SELECT " + courseColumns + " FROM courses" + orderBy(orderings, "id", "title", "teacher_id", "created_at", "updated_at")
	if err := repo.db.SelectContext(ctx, &courses, q); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var crs course.Course
	q := repo.db.Rebind("SELECT " + courseColumns + " FROM courses WHERE id = ?")
	if err := repo.db.GetContext(ctx, &crs, q, id); err != nil {
		return course.Course{}, notFound(err, course.ErrNotFound)
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := repo.db.Rebind("UPDATE courses SET title = ?, description = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, crs.Title, crs.Description, crs.UpdatedAt, crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) Enrol(ctx context.Context, courseID, userID int, at time.Time) error {
	q := repo.db.Rebind("INSERT INTO course_user (course_id, user_id, created_at) VALUES (?, ?, ?)")
	if _, err := repo.db.ExecContext(ctx, q, courseID, userID, at); err != nil {
		switch {
		case isUniqueViolation(err):
			return course.ErrAlreadyJoined
		case isForeignKeyViolation(err):
			return course.ErrNotFound
		}
		return errors.Wrap(err, "enrolling user")
	}
	return nil
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, courseID, userID int) (bool, error) {
	var found []int
	q := repo.db.Rebind("SELECT course_id FROM course_user WHERE course_id = ? AND user_id = ? LIMIT 1")
	if err := repo.db.SelectContext(ctx, &found, q, courseID, userID); err != nil {
		return false, errors.Wrap(err, "checking enrolment")
	}
	return len(found) > 0, nil
}

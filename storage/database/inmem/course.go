package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func courseField(crs course.Course, field string) (interface{}, bool) {
	switch field {
	case "id":
		return crs.ID, true
	case "title":
		return crs.Title, true
	case "teacher_id":
		return crs.TeacherID, true
	case "created_at":
		return crs.CreatedAt, true
	case "updated_at":
		return crs.UpdatedAt, true
	}
	return nil, false
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = repo.db.courses.insert(crs)
	repo.db.courses.rows[crs.ID].ID = crs.ID
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, orderings []core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.db.courses.all()
	sortRows(courses, orderings, courseField)
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses.rows[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses.rows[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Title = crs.Title
	orig.Description = crs.Description
	orig.UpdatedAt = crs.UpdatedAt
	return *orig, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses.rows[id]; !ok {
		return course.ErrNotFound
	}
	repo.db.deleteCourse(id)
	return nil
}

func (repo *courseRepository) Enrol(_ context.Context, courseID, userID int, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses.rows[courseID]; !ok {
		return course.ErrNotFound
	}
	e := enrolment{courseID: courseID, userID: userID}
	if _, ok := repo.db.enrolments[e]; ok {
		return course.ErrAlreadyJoined
	}
	repo.db.enrolments[e] = at
	return nil
}

func (repo *courseRepository) IsEnrolled(_ context.Context, courseID, userID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.enrolments[enrolment{courseID: courseID, userID: userID}]
	return ok, nil
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		require.NoError(t, usr.SetPassword(pwd), "SetPassword()")
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err, "CreateUser()")
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, teacherID int, title string, createdAt ...time.Time) course.Course {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:     title,
		TeacherID: teacherID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	require.NoError(t, err, "CreateCourse()")
	return crs
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID int, title string) assignment.Assignment {
	t.Helper()
	now := time.Now().UTC()
	asgmt, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		CourseID:  courseID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err, "CreateAssignment()")
	return asgmt
}

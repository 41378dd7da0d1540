package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/submission"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, repo user.Repository, email, role string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Name: "Test", Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, usr.SetPassword("password"))
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	usr := seedUser(t, repo, "jane@example.com", user.RoleStudent)
	assert.NotZero(t, usr.ID)

	t.Run("duplicate email", func(t *testing.T) {
		dup := user.User{Name: "Dup", Email: usr.Email, Role: user.RoleStudent, PasswordHash: []byte("x"),
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
		_, err := repo.CreateUser(ctx, dup)
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, usr.Email))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, usr.Email, usr))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "other@example.com"))
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.GetUserByEmail(ctx, usr.Email)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.NoError(t, got.CheckPassword("password"))

		_, err = repo.GetUserByID(ctx, 999)
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("update", func(t *testing.T) {
		now := time.Now().UTC()
		usr.Name = "Jane"
		usr.LastLogin = &now
		got, err := repo.UpdateUser(ctx, usr)
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.Name)
		require.NotNil(t, got.LastLogin)
		assert.WithinDuration(t, now, *got.LastLogin, time.Second)

		_, err = repo.UpdateUser(ctx, user.User{ID: 999})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("revoked tokens", func(t *testing.T) {
		revoked, err := repo.IsTokenRevoked(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, revoked)

		exp := time.Now().Add(time.Hour).UTC()
		require.NoError(t, repo.RevokeToken(ctx, "abc", exp))
		require.NoError(t, repo.RevokeToken(ctx, "abc", exp)) // twice is fine

		revoked, err = repo.IsTokenRevoked(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewCourseRepository(db)

	teacher := seedUser(t, users, "teacher@example.com", user.RoleTeacher)
	student := seedUser(t, users, "student@example.com", user.RoleStudent)

	now := time.Now().UTC()
	first, err := repo.CreateCourse(ctx, course.Course{Title: "Algebra", TeacherID: teacher.ID, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	later := now.Add(time.Minute)
	second, err := repo.CreateCourse(ctx, course.Course{Title: "Biology", TeacherID: teacher.ID, CreatedAt: later, UpdatedAt: later})
	require.NoError(t, err)

	t.Run("query ordering", func(t *testing.T) {
		got, err := repo.QueryCourses(ctx, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID) // newest first

		got, err = repo.QueryCourses(ctx, []core.DBOrdering{{Field: "title", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		second.Title = "Chemistry"
		got, err := repo.UpdateCourse(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "Chemistry", got.Title)

		require.NoError(t, repo.DeleteCourse(ctx, second.ID))
		_, err = repo.GetCourseByID(ctx, second.ID)
		assert.Equal(t, course.ErrNotFound, err)
		assert.Equal(t, course.ErrNotFound, repo.DeleteCourse(ctx, second.ID))
	})

	t.Run("enrolment", func(t *testing.T) {
		enrolled, err := repo.IsEnrolled(ctx, first.ID, student.ID)
		require.NoError(t, err)
		assert.False(t, enrolled)

		require.NoError(t, repo.Enrol(ctx, first.ID, student.ID, now))
		assert.Equal(t, course.ErrAlreadyJoined, repo.Enrol(ctx, first.ID, student.ID, now))
		assert.Equal(t, course.ErrNotFound, repo.Enrol(ctx, 999, student.ID, now))

		enrolled, err = repo.IsEnrolled(ctx, first.ID, student.ID)
		require.NoError(t, err)
		assert.True(t, enrolled)
	})
}

func TestAssignmentAndSubmissionRepositories(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	teacher := seedUser(t, NewUserRepository(db), "teacher@example.com", user.RoleTeacher)
	student := seedUser(t, NewUserRepository(db), "student@example.com", user.RoleStudent)

	now := time.Now().UTC()
	crs, err := NewCourseRepository(db).CreateCourse(ctx, course.Course{Title: "Algebra", TeacherID: teacher.ID, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	asgmts := NewAssignmentRepository(db)
	subs := NewSubmissionRepository(db)

	_, err = asgmts.CreateAssignment(ctx, assignment.Assignment{CourseID: 999, Title: "Orphan", CreatedAt: now, UpdatedAt: now})
	assert.Equal(t, assignment.ErrCourseMissing, err)

	due := now.Add(24 * time.Hour)
	asgmt, err := asgmts.CreateAssignment(ctx, assignment.Assignment{
		CourseID: crs.ID, Title: "Homework 1", DueDate: &due, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	exists, err := asgmts.CourseExists(ctx, crs.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	filtered, err := asgmts.QueryAssignments(ctx, assignment.QueryFilter{CourseID: crs.ID + 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, filtered)

	got, err := asgmts.GetAssignmentByID(ctx, asgmt.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.WithinDuration(t, due, *got.DueDate, time.Second)

	t.Run("submissions", func(t *testing.T) {
		sub, err := subs.CreateSubmission(ctx, submission.Submission{
			AssignmentID: asgmt.ID, UserID: student.ID, Content: "answer", CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)

		_, err = subs.CreateSubmission(ctx, submission.Submission{
			AssignmentID: 999, UserID: student.ID, Content: "answer", CreatedAt: now, UpdatedAt: now,
		})
		assert.Equal(t, submission.ErrAssignmentNotFound, err)

		known, err := subs.ExistingAssignmentIDs(ctx, []int{asgmt.ID, 999})
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{asgmt.ID: true}, known)

		done, err := subs.HasSubmitted(ctx, student.ID, asgmt.ID)
		require.NoError(t, err)
		assert.True(t, done)

		sub.Content = "better answer"
		sub, err = subs.UpdateSubmission(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, "better answer", sub.Content)

		list, err := subs.QuerySubmissions(ctx, submission.QueryFilter{AssignmentID: asgmt.ID}, nil)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("cascade", func(t *testing.T) {
		require.NoError(t, asgmts.DeleteAssignment(ctx, asgmt.ID))
		list, err := subs.QuerySubmissions(ctx, submission.QueryFilter{}, nil)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/tests"
)

func Test_courseApi(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", testPwd, user.RoleTeacher)
	student := testutil.CreateUser(t, app.usrRepo, "Student", "student@test.cd", testPwd, user.RoleStudent)
	teacherToken := app.getToken(t, teacher)
	studentToken := app.getToken(t, student)

	now := time.Now()
	algebra := testutil.CreateCourse(t, app.crsRepo, teacher.ID, "Algebra", now.Add(-2*time.Hour))
	biology := testutil.CreateCourse(t, app.crsRepo, teacher.ID, "Biology", now.Add(-1*time.Hour))

	forbidden := []byte(`{"error": "permission denied"}`)
	notFound := []byte(`{"error": "not found"}`)

	app.run(t, []httpTest{
		{
			name:     "list without token",
			method:   http.MethodGet,
			path:     "/api/courses",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "list newest first",
			method:   http.MethodGet,
			path:     "/api/courses",
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, map[string]interface{}{
				"data":  []course.Course{biology, algebra},
				"meta":  map[string]int{"total_courses": 2},
				"links": map[string]string{"self": "http://example.com/api/courses"},
			}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/courses/%d", algebra.ID),
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, map[string]interface{}{"data": algebra}),
		},
		{
			name:     "retrieve unknown",
			method:   http.MethodGet,
			path:     "/api/courses/999",
			token:    studentToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			name:     "retrieve bad id",
			method:   http.MethodGet,
			path:     "/api/courses/abc",
			token:    studentToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			name:     "create as student",
			method:   http.MethodPost,
			path:     "/api/courses",
			body:     []byte(`{"title": "Chemistry"}`),
			token:    studentToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "create without title",
			method:   http.MethodPost,
			path:     "/api/courses",
			body:     []byte(`{"title": "   ", "description": "no title"}`),
			token:    teacherToken,
			wantCode: http.StatusUnprocessableEntity,
			wantData: validationErr(map[string][]string{"title": {"this field is required"}}),
		},
		{
			name:     "update as student",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/courses/%d", algebra.ID),
			body:     []byte(`{"title": "Algebra II"}`),
			token:    studentToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "delete unknown",
			method:   http.MethodDelete,
			path:     "/api/courses/999",
			token:    teacherToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
	})

	t.Run("create", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/courses", teacherToken, []byte(`{"title": " Chemistry ", "description": "Atoms"}`))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct{ Data course.Course }
		unmarshalBody(t, rec, &resp)
		assert.NotZero(t, resp.Data.ID)
		assert.Equal(t, "Chemistry", resp.Data.Title)
		assert.Equal(t, "Atoms", resp.Data.Description)
		assert.Equal(t, teacher.ID, resp.Data.TeacherID)
	})

	t.Run("update", func(t *testing.T) {
		rec := app.do(http.MethodPut, fmt.Sprintf("/api/courses/%d", algebra.ID), teacherToken, []byte(`{"title": "Algebra II"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct{ Data course.Course }
		unmarshalBody(t, rec, &resp)
		assert.Equal(t, "Algebra II", resp.Data.Title)
		assert.True(t, resp.Data.UpdatedAt.After(algebra.UpdatedAt))
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(http.MethodDelete, fmt.Sprintf("/api/courses/%d", biology.ID), teacherToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message": "Course deleted successfully"}`, rec.Body.String())

		_, err := app.crsRepo.GetCourseByID(context.Background(), biology.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})
}

func Test_courseApi_join(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.usrRepo, "Teacher", "teacher@test.cd", testPwd, user.RoleTeacher)
	student := testutil.CreateUser(t, app.usrRepo, "Student", "student@test.cd", testPwd, user.RoleStudent)
	crs := testutil.CreateCourse(t, app.crsRepo, teacher.ID, "Algebra")
	path := fmt.Sprintf("/api/join-course/%d", crs.ID)

	app.run(t, []httpTest{
		{
			name:     "teacher cannot join",
			method:   http.MethodPost,
			path:     path,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "permission denied"}`),
		},
		{
			name:     "unknown course",
			method:   http.MethodPost,
			path:     "/api/join-course/999",
			token:    app.getToken(t, student),
			wantCode: http.StatusUnprocessableEntity,
			wantData: validationErr(map[string][]string{"courseId": {course.ErrCourseMissing.Error()}}),
		},
		{
			name:     "success",
			method:   http.MethodPost,
			path:     path,
			token:    app.getToken(t, student),
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Successfully joined the course"}`),
		},
		{
			name:     "already joined",
			method:   http.MethodPost,
			path:     path,
			token:    app.getToken(t, student),
			wantCode: http.StatusUnprocessableEntity,
			wantData: validationErr(map[string][]string{"courseId": {course.ErrAlreadyJoined.Error()}}),
		},
	})

	joined, err := app.crsRepo.IsEnrolled(context.Background(), crs.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, joined)
}

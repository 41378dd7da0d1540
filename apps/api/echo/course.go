package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, deps ServerDeps) {
	api := courseApi{svc: deps.CourseSvc, validate: deps.Validate}

	g.GET("/courses", api.query)
	g.GET("/courses/:id", api.retrieve)
	g.POST("/courses", api.create, teacherMiddleware())
	g.PUT("/courses/:id", api.update, teacherMiddleware())
	g.DELETE("/courses/:id", api.destroy, teacherMiddleware())

	g.POST("/join-course/:courseId", api.join, studentMiddleware())
}

func (api *courseApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return sendCollection(ctx, courses, len(courses), "total_courses")
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return sendItem(ctx, http.StatusOK, crs)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	crs, err := api.svc.Create(ctx.Request().Context(), claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return sendItem(ctx, http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return sendItem(ctx, http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return sendMessage(ctx, "Course deleted successfully")
}

func (api *courseApi) join(ctx echo.Context) error {
	id, err := paramID(ctx, "courseId")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.Join(ctx.Request().Context(), claims.UserID(), id); err != nil {
		return err
	}
	return sendMessage(ctx, "Successfully joined the course")
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

// assignments are managed by teachers only
func registerAssignmentAPI(g *echo.Group, deps ServerDeps) {
	api := assignmentApi{svc: deps.AssignmentSvc, validate: deps.Validate}
	teacher := teacherMiddleware()

	g.GET("/assignments", api.query, teacher)
	g.GET("/assignments/:id", api.retrieve, teacher)
	g.POST("/assignments", api.create, teacher)
	g.PUT("/assignments/:id", api.update, teacher)
	g.DELETE("/assignments/:id", api.destroy, teacher)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	courseID, err := queryID(ctx, "course_id")
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.svc.Query(ctx.Request().Context(), assignment.QueryFilter{CourseID: courseID}, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return sendCollection(ctx, items, len(items), "total_assignments")
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	asm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	return sendItem(ctx, http.StatusOK, asm)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	asm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return sendItem(ctx, http.StatusCreated, asm)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	asm, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return sendItem(ctx, http.StatusOK, asm)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return sendMessage(ctx, "Assignment deleted successfully")
}

package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/submission"
)

type submissionApi struct {
	svc      *submission.Service
	validate *validator.Validate
}

// submissions are managed by students only
func registerSubmissionAPI(g *echo.Group, deps ServerDeps) {
	api := submissionApi{svc: deps.SubmissionSvc, validate: deps.Validate}
	student := studentMiddleware()

	g.POST("/submissions/multiple", api.createMultiple, student)
	g.GET("/submissions", api.query, student)
	g.GET("/submissions/:id", api.retrieve, student)
	g.POST("/submissions", api.create, student)
	g.PUT("/submissions/:id", api.update, student)
	g.DELETE("/submissions/:id", api.destroy, student)
}

type (
	batchRequest struct {
		Submissions json.RawMessage `json:"submissions"`
	}

	batchResponse struct {
		Message string `json:"message"`
		submission.BatchResult
	}
)

func (api *submissionApi) createMultiple(ctx echo.Context) error {
	var data batchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to batchRequest")
	}
	items, flds := submission.DecodeBatch(data.Submissions)
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.SubmitBatch(ctx.Request().Context(), claims.UserID(), items)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, batchResponse{Message: "Submissions processed successfully", BatchResult: res})
}

func (api *submissionApi) query(ctx echo.Context) error {
	assignmentID, err := queryID(ctx, "assignment_id")
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.svc.Query(ctx.Request().Context(), submission.QueryFilter{AssignmentID: assignmentID}, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return sendCollection(ctx, items, len(items), "total_submissions")
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	sub, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding submission by ID")
	}
	return sendItem(ctx, http.StatusOK, sub)
}

func (api *submissionApi) create(ctx echo.Context) error {
	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.svc.Create(ctx.Request().Context(), claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return sendItem(ctx, http.StatusCreated, sub)
}

func (api *submissionApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data submission.UpdateSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating submission")
	}
	return sendItem(ctx, http.StatusOK, sub)
}

func (api *submissionApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	return sendMessage(ctx, "Submission deleted successfully")
}

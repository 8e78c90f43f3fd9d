package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmwangi/kazi/core/homework"
)

type homeworkApi struct {
	svc *homework.Service
}

func registerHomeworkAPI(g *echo.Group, svc *homework.Service) {
	api := homeworkApi{svc: svc}

	hg := g.Group("/homework")
	hg.POST("", api.create, teacherMiddleware())
	hg.GET("", api.query)
	hg.GET("/:id", api.retrieve)
	hg.PUT("/:id", api.update, teacherMiddleware())
	hg.DELETE("/:id", api.destroy, teacherMiddleware())
	hg.GET("/:id/summary", api.summary)
	hg.GET("/:id/submissions", api.querySubmissions)
	hg.POST("/:id/submissions", api.submit)

	sg := g.Group("/submissions")
	sg.GET("/:id", api.retrieveSubmission)
	sg.PUT("/:id/grade", api.grade, teacherMiddleware())
	sg.POST("/:id/comments", api.comment)
}

// Handlers

func (api *homeworkApi) create(ctx echo.Context) error {
	var data homework.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	a, err := api.svc.CreateAssignment(actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *homeworkApi) query(ctx echo.Context) error {
	var filter homework.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	res, err := api.svc.Filter(filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *homeworkApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetAssignment(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *homeworkApi) update(ctx echo.Context) error {
	var data homework.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	a, err := api.svc.UpdateAssignment(actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *homeworkApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if err := api.svc.DeleteAssignment(actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *homeworkApi) summary(ctx echo.Context) error {
	sum, err := api.svc.GetSummary(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *homeworkApi) querySubmissions(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	res, err := api.svc.QuerySubmissions(actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *homeworkApi) submit(ctx echo.Context) error {
	var data homework.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	data.AssignmentID = ctx.Param("id")
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	sub, err := api.svc.SubmitHomework(actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *homeworkApi) retrieveSubmission(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	sub, err := api.svc.GetSubmission(actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *homeworkApi) grade(ctx echo.Context) error {
	var data homework.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	sub, err := api.svc.GradeSubmission(actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *homeworkApi) comment(ctx echo.Context) error {
	var data homework.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	comment, err := api.svc.CommentSubmission(actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, comment)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmwangi/kazi/core"
	"github.com/tmwangi/kazi/core/homework"
)

// Identity collaborator headers. The ledger trusts the supplied identity;
// verifying it is out of scope here.
const (
	actorIDHeader   = "X-Actor-ID"
	actorNameHeader = "X-Actor-Name"
	actorRoleHeader = "X-Actor-Role"

	actorContextKey = "actor"
)

var errActorNotFoundInCtx = errors.New("actor object not found in echo.Context")

// actorMiddleware binds the caller's identity headers into a
// homework.Actor available via getContextActor.
func actorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor := homework.Actor{
				ID:   core.CleanString(ctx.Request().Header.Get(actorIDHeader)),
				Name: core.CleanString(ctx.Request().Header.Get(actorNameHeader)),
				Role: core.CleanString(ctx.Request().Header.Get(actorRoleHeader)),
			}
			if actor.ID == "" || actor.Role == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "actor identity headers missing")
			}
			if !actor.IsTeacher() && !actor.IsStudent() {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown actor role")
			}
			if actor.Name == "" {
				actor.Name = actor.ID
			}
			ctx.Set(actorContextKey, actor)
			return next(ctx)
		}
	}
}

func getContextActor(ctx echo.Context) (homework.Actor, error) {
	if actor, ok := ctx.Get(actorContextKey).(homework.Actor); ok {
		return actor, nil
	}
	return homework.Actor{}, errActorNotFoundInCtx
}

// teacherMiddleware rejects non-teacher actors before the handler runs.
func teacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			if !actor.IsTeacher() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

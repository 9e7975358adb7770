package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/badge"
)

type badgeApi struct {
	svc      badge.Service
	validate *validator.Validate
}

func registerBadgeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := badgeApi{
		svc:      deps.BadgeSvc,
		validate: deps.Validate,
	}

	bg := g.Group("/badges", jwt)
	bg.GET("", api.query)
	bg.POST("", api.create, adminMiddleware())
	bg.PUT("/:id", api.update, adminMiddleware())
	bg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *badgeApi) query(ctx echo.Context) error {
	badges, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying badges")
	}
	if badges == nil {
		badges = []badge.Badge{}
	}
	return ctx.JSON(http.StatusOK, badges)
}

func (api *badgeApi) create(ctx echo.Context) error {
	var data badge.NewBadge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBadge")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bdg, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating badge")
	}
	return ctx.JSON(http.StatusCreated, bdg)
}

func (api *badgeApi) update(ctx echo.Context) error {
	var data badge.UpdateBadge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBadge")
	}

	orig, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	bdg, err := api.svc.Update(orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating badge")
	}
	return ctx.JSON(http.StatusOK, bdg)
}

func (api *badgeApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting badge")
	}
	return ctx.NoContent(http.StatusNoContent)
}

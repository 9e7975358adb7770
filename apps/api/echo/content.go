package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/content"
	"github.com/trezcool/mazoezi/core/progress"
)

type contentApi struct {
	svc         content.Service
	progressSvc progress.Service
	validate    *validator.Validate
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := contentApi{
		svc:         deps.ContentSvc,
		progressSvc: deps.ProgressSvc,
		validate:    deps.Validate,
	}

	mg := g.Group("/modules", jwt)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.GET("/:id/decks", api.queryDecks)
	mg.POST("", api.create, adminMiddleware())
	mg.PUT("/:id", api.update, adminMiddleware())
	mg.DELETE("/:id", api.destroy, adminMiddleware())
	mg.POST("/:id/publish", api.togglePublish, adminMiddleware())

	dg := g.Group("/decks", jwt, adminMiddleware())
	dg.POST("", api.createDeck)
	dg.PUT("/:id", api.updateDeck)
	dg.DELETE("/:id", api.destroyDeck)
}

// Handlers

func (api *contentApi) query(ctx echo.Context) error {
	filter := new(content.ModuleFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []content.Module{})
	}

	// staff only ever see published modules; admins may ask for drafts too
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	filter.PublishedOnly = !(claims.IsAdmin && ctx.QueryParam("all") == "true")

	mods, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if mods == nil {
		mods = []content.Module{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	mod, err := api.svc.GetModule(ctx.Param("id"))
	if err != nil {
		return err
	}

	claims, cErr := getContextClaims(ctx)
	if cErr != nil {
		return cErr
	}
	if !mod.IsPublished && !claims.IsAdmin {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *contentApi) queryDecks(ctx echo.Context) error {
	moduleID := ctx.Param("id")
	if _, err := api.svc.GetModule(moduleID); err != nil {
		return err
	}

	decks, err := api.svc.ModuleDecks(moduleID)
	if err != nil {
		return errors.Wrap(err, "querying decks")
	}
	if decks == nil {
		decks = []content.Deck{}
	}
	return ctx.JSON(http.StatusOK, decks)
}

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *contentApi) update(ctx echo.Context) error {
	var data content.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}

	orig, err := api.svc.GetModule(ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *contentApi) togglePublish(ctx echo.Context) error {
	mod, err := api.svc.TogglePublish(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetModule(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteModules(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) createDeck(ctx echo.Context) error {
	var data content.NewDeck
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDeck")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	deck, err := api.svc.CreateDeck(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, deck)
}

func (api *contentApi) updateDeck(ctx echo.Context) error {
	var data content.UpdateDeck
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDeck")
	}

	orig, err := api.svc.GetDeck(ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	deck, err := api.svc.UpdateDeck(orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating deck")
	}
	return ctx.JSON(http.StatusOK, deck)
}

func (api *contentApi) destroyDeck(ctx echo.Context) error {
	if _, err := api.svc.GetDeck(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteDecks(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting deck")
	}
	return ctx.NoContent(http.StatusNoContent)
}

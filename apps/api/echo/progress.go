package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/progress"
)

type progressApi struct {
	svc progress.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := progressApi{svc: deps.ProgressSvc}

	pg := g.Group("/progress", jwt)
	pg.GET("/me", api.retrieveMine)
	pg.GET("/leaderboard", api.leaderboard)
	pg.POST("/app-open", api.recordAppOpen)
	pg.POST("/completions", api.recordCompletion)
	pg.POST("/deck-views", api.recordDeckView)
	pg.GET("", api.query, adminMiddleware())
}

// Handlers

func (api *progressApi) retrieveMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == progress.ErrNotFound {
			// no activity yet; an empty aggregate reads better than a 404
			return ctx.JSON(http.StatusOK, progress.UserProgress{UserID: claims.Subject})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *progressApi) recordCompletion(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data CompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompletionRequest")
	}

	// the calendar day is fixed here at the boundary; everything below
	// works off the event's date
	res, err := api.svc.RecordCompletion(ctx.Request().Context(), progress.CompletionEvent{
		UserID:   claims.Subject,
		ModuleID: data.ModuleID,
		Today:    core.Today(),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) recordAppOpen(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.RecordAppOpen(ctx.Request().Context(), progress.OpenEvent{
		UserID: claims.Subject,
		Today:  core.Today(),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) recordDeckView(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data DeckViewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeckViewRequest")
	}

	p, err := api.svc.RecordDeckView(ctx.Request().Context(), claims.Subject, data.DeckID, core.Today())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *progressApi) leaderboard(ctx echo.Context) error {
	entries, err := api.svc.Leaderboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}
	if entries == nil {
		entries = []progress.UserProgress{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *progressApi) query(ctx echo.Context) error {
	records, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if records == nil {
		records = []progress.UserProgress{}
	}
	return ctx.JSON(http.StatusOK, records)
}

type (
	CompletionRequest struct {
		ModuleID string `json:"module_id"`
	}

	DeckViewRequest struct {
		DeckID string `json:"deck_id"`
	}
)

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/voicenote"
)

type voiceNoteApi struct {
	svc      voicenote.Service
	validate *validator.Validate
}

func registerVoiceNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := voiceNoteApi{
		svc:      deps.VoiceNoteSvc,
		validate: deps.Validate,
	}

	vg := g.Group("/voice-notes", jwt)
	vg.POST("", api.create)
	vg.GET("", api.queryApproved)
	vg.GET("/pending", api.queryPending, adminMiddleware())
	vg.POST("/:id/approve", api.approve, adminMiddleware())
	vg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *voiceNoteApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data voicenote.NewVoiceNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVoiceNote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	vn, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating voice note")
	}
	return ctx.JSON(http.StatusCreated, vn)
}

func (api *voiceNoteApi) queryApproved(ctx echo.Context) error {
	notes, err := api.svc.ListApproved(ctx.QueryParam("module_id"))
	if err != nil {
		return errors.Wrap(err, "querying voice notes")
	}
	if notes == nil {
		notes = []voicenote.VoiceNote{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *voiceNoteApi) queryPending(ctx echo.Context) error {
	notes, err := api.svc.ListPending()
	if err != nil {
		return errors.Wrap(err, "querying pending voice notes")
	}
	if notes == nil {
		notes = []voicenote.VoiceNote{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *voiceNoteApi) approve(ctx echo.Context) error {
	vn, err := api.svc.Approve(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vn)
}

func (api *voiceNoteApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Reject(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting voice note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

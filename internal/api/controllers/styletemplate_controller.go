package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/services"
	styletemplate2 "github.com/scenecraft/scenecraft/internal/services/styletemplate"
)

func RegisterStyleTemplateRoutes(r *router.Router, svc *services.Services) {
	// Create style template
	r.POST("/api/style-templates", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		var body styletemplate2.CreateStyleTemplateRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Name == "" {
			writeError(ctx, stdCtx, "Name is required", perrors.NewErrInvalidRequest("Name is required", errors.New("name is required")))
			return
		}
		if len(body.Prompts) == 0 {
			writeError(ctx, stdCtx, "At least one prompt is required", perrors.NewErrInvalidRequest("At least one prompt is required", errors.New("prompts are required")))
			return
		}

		created, err := svc.StyleTemplate.Create(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create style template", perrors.NewErrInternalServerError("Failed to create style template", err))
			return
		}

		writeOK(ctx, stdCtx, "Style template created successfully", created)
	})

	// List style templates
	r.GET("/api/style-templates", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		templates, err := svc.StyleTemplate.List(stdCtx)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list style templates", perrors.NewErrInternalServerError("Failed to list style templates", err))
			return
		}

		writeOK(ctx, stdCtx, "Style templates retrieved successfully", templates)
	})

	// Get style template by id
	r.GET("/api/style-templates/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		tpl, err := svc.StyleTemplate.GetByID(stdCtx, id)
		if err != nil {
			if errors.Is(err, styletemplate2.ErrStyleTemplateNotFound) {
				writeError(ctx, stdCtx, "Style template not found", perrors.New(perrors.ErrCodeNotFound, "Style template not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to get style template", perrors.NewErrInternalServerError("Failed to get style template", err))
			return
		}

		writeOK(ctx, stdCtx, "Style template retrieved successfully", tpl)
	})

	// Update style template
	r.PUT("/api/style-templates/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body styletemplate2.UpdateStyleTemplateRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.StyleTemplate.Update(stdCtx, id, &body)
		if err != nil {
			if errors.Is(err, styletemplate2.ErrStyleTemplateNotFound) {
				writeError(ctx, stdCtx, "Style template not found", perrors.New(perrors.ErrCodeNotFound, "Style template not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to update style template", perrors.NewErrInternalServerError("Failed to update style template", err))
			return
		}

		writeOK(ctx, stdCtx, "Style template updated successfully", updated)
	})

	// Delete style template
	r.DELETE("/api/style-templates/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.StyleTemplate.Delete(stdCtx, id); err != nil {
			if errors.Is(err, styletemplate2.ErrStyleTemplateNotFound) {
				writeError(ctx, stdCtx, "Style template not found", perrors.New(perrors.ErrCodeNotFound, "Style template not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to delete style template", perrors.NewErrInternalServerError("Failed to delete style template", err))
			return
		}

		writeOK(ctx, stdCtx, "Style template deleted successfully", nil)
	})
}

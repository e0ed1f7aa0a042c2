package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/services"
	scene2 "github.com/scenecraft/scenecraft/internal/services/scene"
)

func RegisterSceneRoutes(r *router.Router, svc *services.Services) {
	// Create scene
	r.POST("/api/scenes", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		var body scene2.CreateSceneRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Description == "" {
			writeError(ctx, stdCtx, "Description is required", perrors.NewErrInvalidRequest("Description is required", errors.New("description is required")))
			return
		}

		created, err := svc.Scene.Create(stdCtx, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create scene", perrors.NewErrInternalServerError("Failed to create scene", err))
			return
		}

		writeOK(ctx, stdCtx, "Scene created successfully", created)
	})

	// List scenes of a project
	r.GET("/api/scenes", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		projectID, err := requireUUIDQuery(ctx, "project_id")
		if err != nil {
			writeError(ctx, stdCtx, "project_id is required", perrors.NewErrInvalidRequest("project_id is required", err))
			return
		}

		scenes, err := svc.Scene.ListByProject(stdCtx, projectID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list scenes", perrors.NewErrInternalServerError("Failed to list scenes", err))
			return
		}

		writeOK(ctx, stdCtx, "Scenes retrieved successfully", scenes)
	})

	// Get scene by id
	r.GET("/api/scenes/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		sc, err := svc.Scene.GetByID(stdCtx, id)
		if err != nil {
			if errors.Is(err, scene2.ErrSceneNotFound) {
				writeError(ctx, stdCtx, "Scene not found", perrors.New(perrors.ErrCodeSceneNotFound, "Scene not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to get scene", perrors.NewErrInternalServerError("Failed to get scene", err))
			return
		}

		writeOK(ctx, stdCtx, "Scene retrieved successfully", sc)
	})

	// Update scene
	r.PUT("/api/scenes/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body scene2.UpdateSceneRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Scene.Update(stdCtx, id, &body)
		if err != nil {
			if errors.Is(err, scene2.ErrSceneNotFound) {
				writeError(ctx, stdCtx, "Scene not found", perrors.New(perrors.ErrCodeSceneNotFound, "Scene not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to update scene", perrors.NewErrInternalServerError("Failed to update scene", err))
			return
		}

		writeOK(ctx, stdCtx, "Scene updated successfully", updated)
	})

	// Delete scene
	r.DELETE("/api/scenes/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Scene.Delete(stdCtx, id); err != nil {
			if errors.Is(err, scene2.ErrSceneNotFound) {
				writeError(ctx, stdCtx, "Scene not found", perrors.New(perrors.ErrCodeSceneNotFound, "Scene not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to delete scene", perrors.NewErrInternalServerError("Failed to delete scene", err))
			return
		}

		writeOK(ctx, stdCtx, "Scene deleted successfully", nil)
	})
}

package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/services"
	asset2 "github.com/scenecraft/scenecraft/internal/services/asset"
)

func RegisterAssetRoutes(r *router.Router, svc *services.Services) {
	// List assets of a project
	r.GET("/api/assets", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		projectID, err := requireUUIDQuery(ctx, "project_id")
		if err != nil {
			writeError(ctx, stdCtx, "project_id is required", perrors.NewErrInvalidRequest("project_id is required", err))
			return
		}

		assets, err := svc.Asset.ListByProject(stdCtx, projectID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list assets", perrors.NewErrInternalServerError("Failed to list assets", err))
			return
		}

		writeOK(ctx, stdCtx, "Assets retrieved successfully", assets)
	})

	// Get asset metadata by id
	r.GET("/api/assets/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		a, err := svc.Asset.GetByID(stdCtx, id)
		if err != nil {
			if errors.Is(err, asset2.ErrAssetNotFound) {
				writeError(ctx, stdCtx, "Asset not found", perrors.New(perrors.ErrCodeAssetNotFound, "Asset not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to get asset", perrors.NewErrInternalServerError("Failed to get asset", err))
			return
		}

		writeOK(ctx, stdCtx, "Asset retrieved successfully", a)
	})

	// Download asset payload. Served raw with the stored mime type, not
	// wrapped in the JSON envelope.
	r.GET("/api/assets/{id}/content", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		a, data, err := svc.Asset.Open(stdCtx, id)
		if err != nil {
			if errors.Is(err, asset2.ErrAssetNotFound) {
				writeError(ctx, stdCtx, "Asset not found", perrors.New(perrors.ErrCodeAssetNotFound, "Asset not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to read asset", perrors.NewErrInternalServerError("Failed to read asset", err))
			return
		}

		ctx.Response.Header.Set("content-type", a.MimeType)
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBody(data)
	})

	// Delete asset
	r.DELETE("/api/assets/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Asset.Delete(stdCtx, id); err != nil {
			if errors.Is(err, asset2.ErrAssetNotFound) {
				writeError(ctx, stdCtx, "Asset not found", perrors.New(perrors.ErrCodeAssetNotFound, "Asset not found", err))
				return
			}
			writeError(ctx, stdCtx, "Failed to delete asset", perrors.NewErrInternalServerError("Failed to delete asset", err))
			return
		}

		writeOK(ctx, stdCtx, "Asset deleted successfully", nil)
	})
}

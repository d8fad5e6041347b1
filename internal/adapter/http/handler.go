package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	catalogschema "loopplanner/internal/adapter/catalog/schema"
	staticcatalog "loopplanner/internal/adapter/catalog/static"
	"loopplanner/internal/app/learning"
	"loopplanner/internal/app/plan"
	"loopplanner/internal/app/ports"
	"loopplanner/internal/app/predict"
	"loopplanner/internal/domain/familiarity"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	PredictUC  predict.UseCase
	LearningUC learning.UseCase
	PlanUC     plan.UseCase
	Catalog    ports.CatalogProvider
	DataFiles  dataFileProvider
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	s.OPTIONS("/*path", func(context.Context, *app.RequestContext) {})

	api := s.Group("/api")
	api.POST("/predict", h.predict)

	catalog := api.Group("/catalog", noStoreMiddleware())
	catalog.GET("/actions", h.catalogActions)
	catalog.GET("/locations", h.catalogLocations)
	catalog.GET("/events", h.catalogEvents)
	catalog.GET("/schema", h.catalogSchema)

	learn := api.Group("/learning")
	learn.GET("/:profile", h.learningGet)
	learn.POST("/:profile/import", h.learningImport)
	learn.GET("/:profile/export", h.learningExport)
	learn.POST("/:profile/commit", h.learningCommit)

	api.POST("/plans", h.savePlan)
	api.GET("/plans", h.listPlans)
	api.GET("/plans/:id", h.getPlan)
	api.DELETE("/plans/:id", h.deletePlan)

	s.GET("/data/:file", noStoreMiddleware(), h.dataFile)
	s.GET("/ops/kpi", h.kpi)
	s.GET("/healthz", h.healthz)
}

type predictRequest struct {
	ProfileID string            `json:"profile_id"`
	Actions   []string          `json:"actions"`
	Learning  familiarity.State `json:"learning,omitempty"`
}

type commitRequest struct {
	Actions []string `json:"actions"`
}

type savePlanRequest struct {
	ID        string   `json:"id,omitempty"`
	ProfileID string   `json:"profile_id"`
	Name      string   `json:"name"`
	Actions   []string `json:"actions"`
	Version   int64    `json:"version,omitempty"`
}

func (h Handler) predict(c context.Context, ctx *app.RequestContext) {
	var body predictRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.PredictUC.Execute(c, predict.Request{
		ProfileID: body.ProfileID,
		Actions:   body.Actions,
		Learning:  body.Learning,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) catalogActions(c context.Context, ctx *app.RequestContext) {
	catalog, err := h.Catalog.Catalog(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, catalog.Actions)
}

func (h Handler) catalogLocations(c context.Context, ctx *app.RequestContext) {
	catalog, err := h.Catalog.Catalog(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"locations": catalog.Locations})
}

func (h Handler) catalogEvents(c context.Context, ctx *app.RequestContext) {
	catalog, err := h.Catalog.Catalog(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"events": catalog.Events})
}

func (h Handler) catalogSchema(_ context.Context, ctx *app.RequestContext) {
	b, err := catalogschema.JSON()
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "application/schema+json", b)
}

func (h Handler) learningGet(c context.Context, ctx *app.RequestContext) {
	resp, err := h.LearningUC.Get(c, ctx.Param("profile"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) learningImport(c context.Context, ctx *app.RequestContext) {
	strict, _ := strconv.ParseBool(string(ctx.Query("strict")))
	resp, err := h.LearningUC.Import(c, learning.ImportRequest{
		ProfileID: ctx.Param("profile"),
		CSV:       bytes.NewReader(ctx.Request.Body()),
		Strict:    strict,
	})
	if err != nil {
		var unknownErr *learning.UnknownActionsError
		if errors.As(err, &unknownErr) {
			ctx.JSON(consts.StatusUnprocessableEntity, map[string]any{
				"error": map[string]any{
					"code":    "unknown_actions",
					"message": err.Error(),
					"actions": unknownErr.Names,
				},
			})
			return
		}
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) learningExport(c context.Context, ctx *app.RequestContext) {
	profileID := ctx.Param("profile")
	text, err := h.LearningUC.Export(c, profileID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="learning-`+sanitizeFilename(profileID)+`.csv"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(text))
}

func (h Handler) learningCommit(c context.Context, ctx *app.RequestContext) {
	var body commitRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LearningUC.CommitRun(c, learning.CommitRequest{
		ProfileID: ctx.Param("profile"),
		Actions:   body.Actions,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) savePlan(c context.Context, ctx *app.RequestContext) {
	var body savePlanRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.PlanUC.Save(c, plan.SaveRequest{
		ID:        body.ID,
		ProfileID: body.ProfileID,
		Name:      body.Name,
		Actions:   body.Actions,
		Version:   body.Version,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	status := consts.StatusOK
	if strings.TrimSpace(body.ID) == "" {
		status = consts.StatusCreated
	}
	ctx.JSON(status, resp)
}

func (h Handler) listPlans(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.PlanUC.List(c, plan.ListRequest{
		ProfileID: string(ctx.Query("profile_id")),
		Limit:     limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"plans": resp})
}

func (h Handler) getPlan(c context.Context, ctx *app.RequestContext) {
	resp, err := h.PlanUC.Get(c, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) deletePlan(c context.Context, ctx *app.RequestContext) {
	if err := h.PlanUC.Delete(c, ctx.Param("id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.SetStatusCode(consts.StatusNoContent)
}

type dataFileProvider interface {
	File(ctx context.Context, name string) ([]byte, error)
}

func (h Handler) dataFile(c context.Context, ctx *app.RequestContext) {
	if h.DataFiles == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "data files not configured")
		return
	}
	name := strings.TrimPrefix(ctx.Param("file"), "/")
	if name == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", "invalid filepath")
		return
	}
	b, err := h.DataFiles.File(c, name)
	if errors.Is(err, fs.ErrNotExist) {
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", "file not found")
		return
	}
	if err != nil {
		writeError(ctx, err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if filepath.Ext(name) == ".json" {
		contentType = "application/json"
	}
	ctx.Data(http.StatusOK, contentType, b)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, predict.ErrInvalidRequest),
		errors.Is(err, learning.ErrInvalidRequest),
		errors.Is(err, plan.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, staticcatalog.ErrInvalidDataPath):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_filepath", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

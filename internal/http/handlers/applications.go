package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/careerloop/internal/config"
	"github.com/geocoder89/careerloop/internal/domain/application"
	"github.com/geocoder89/careerloop/internal/http/middlewares"
	"github.com/geocoder89/careerloop/internal/utils"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

// ApplicationStore is owner-scoped: every call names the caller, and rows
// owned by anyone else come back as application.ErrNotFound.
type ApplicationStore interface {
	Create(ctx context.Context, userID string, req application.CreateRequest) (application.Application, error)
	List(ctx context.Context, userID string, page application.Page) ([]application.Application, error)
	GetByID(ctx context.Context, userID, id string) (application.Application, error)
	Update(ctx context.Context, userID, id string, req application.UpdateRequest) (application.Application, error)
	Delete(ctx context.Context, userID, id string) error
}

type ApplicationsHandler struct {
	repo   ApplicationStore
	limits utils.PageLimits
}

func NewApplicationsHandler(repo ApplicationStore, limits utils.PageLimits) *ApplicationsHandler {
	return &ApplicationsHandler{repo: repo, limits: limits}
}

func (h *ApplicationsHandler) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req application.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	a, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create job application", err)
		return
	}

	ctx.JSON(http.StatusCreated, a)
}

func (h *ApplicationsHandler) List(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	skip, limit, err := utils.ParseSkipLimit(ctx.Query("skip"), ctx.Query("limit"), h.limits)
	if err != nil {
		field := "skip"
		if errors.Is(err, utils.ErrInvalidLimit) {
			field = "limit"
		}
		RespondValidation(ctx, "Invalid paging parameters", gin.H{
			"fields": []FieldError{{Field: field, Rule: "min", Message: err.Error()}},
		})
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.repo.List(cctx, userID, application.Page{Skip: skip, Limit: limit})

	if err != nil {
		RespondInternal(ctx, "Could not list job applications", err)
		return
	}

	if items == nil {
		items = []application.Application{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ApplicationsHandler) Get(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	id, ok := applicationID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	a, err := h.repo.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			RespondNotFound(ctx, "Job application not found")
			return
		}
		RespondInternal(ctx, "Could not fetch job application", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, a)
}

func (h *ApplicationsHandler) Update(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	id, ok := applicationID(ctx)
	if !ok {
		return
	}

	var req application.UpdateRequest

	nulls, ok := BindJSONWithNulls(ctx, &req)
	if !ok {
		return
	}

	var notNullable []FieldError
	for _, key := range nulls {
		if err := req.MarkNull(key); err != nil {
			notNullable = append(notNullable, FieldError{Field: key, Rule: "required", Message: "cannot be null"})
		}
	}
	if len(notNullable) > 0 {
		RespondValidation(ctx, "Invalid request body", gin.H{"fields": notNullable})
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	a, err := h.repo.Update(cctx, userID, id, req)

	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			RespondNotFound(ctx, "Job application not found")
			return
		}
		RespondInternal(ctx, "Could not update job application", err)
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *ApplicationsHandler) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	id, ok := applicationID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	err := h.repo.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			RespondNotFound(ctx, "Job application not found")
			return
		}
		RespondInternal(ctx, "Could not delete job application", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func callerID(ctx *gin.Context) (string, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity")
		return "", false
	}
	return userID, true
}

// malformed ids are rejected before any storage access
func applicationID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondValidation(ctx, "Invalid job application id", gin.H{
			"fields": []FieldError{{Field: "id", Rule: "uuid", Message: validationMessage("uuid", "")}},
		})
		return "", false
	}

	return id, true
}

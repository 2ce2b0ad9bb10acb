package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/service"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

const basePath = "/api/authors"

type AuthorHandler struct {
	service  service.ServiceInterface
	alerts   *response.Alerts
	defaults pagination.Defaults
}

func NewAuthorHandler(svc service.ServiceInterface, alerts *response.Alerts, defaults pagination.Defaults) *AuthorHandler {
	return &AuthorHandler{
		service:  svc,
		alerts:   alerts,
		defaults: defaults,
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var dto model.AuthorDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if dto.ID != nil {
		h.rejectID(c)
		return
	}

	h.create(c, &dto)
}

func (h *AuthorHandler) create(c *gin.Context, dto *model.AuthorDTO) {
	created, err := h.service.Create(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header(response.HeaderLocation, fmt.Sprintf("%s/%d", basePath, *created.ID))
	h.alerts.EntityCreated(c, model.EntityName, *created.ID)
	response.JSON(c, http.StatusCreated, created)
}

func (h *AuthorHandler) rejectID(c *gin.Context) {
	h.alerts.Failure(c, model.EntityName, model.IDExistsMessage)
	response.ErrorWithDetails(c, http.StatusBadRequest, "idexists", model.IDExistsMessage,
		gin.H{"entityName": model.EntityName})
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PUT /api/authors (no id creates)
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Update(c *gin.Context) {
	var dto model.AuthorDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if dto.ID == nil {
		h.create(c, &dto)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.alerts.EntityUpdated(c, model.EntityName, *updated.ID)
	response.JSON(c, http.StatusOK, updated)
}

// ════════════════════════════════════════════════════════════════
// READ: List - GET /api/authors?page=0&size=20&sort=name,asc
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) List(c *gin.Context) {
	p, err := pagination.Parse(c.Request.URL.Query(), h.defaults)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.service.FindAll(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Paginated(c, page, c.Request.URL.Path)
	response.JSON(c, http.StatusOK, page.Content)
}

// ════════════════════════════════════════════════════════════════
// READ: GetByID - GET /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	dto, err := h.service.FindOne(c.Request.Context(), id)
	if errors.Is(err, model.ErrAuthorNotFound) {
		response.Empty(c, http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.alerts.EntityDeleted(c, model.EntityName, id)
	response.Empty(c, http.StatusOK)
}

// ════════════════════════════════════════════════════════════════
// SEARCH: GET /api/_search/authors/:query
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Search(c *gin.Context) {
	dtos, err := h.service.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dtos)
}

func (h *AuthorHandler) fail(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Author request failed")
		_ = c.Error(err)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	response.ErrorResponse(c, status, model.ToErrorCode(err), message)
}

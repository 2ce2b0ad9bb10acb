package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"
)

const basePath = "/api/books"

type BookHandler struct {
	service  service.ServiceInterface
	alerts   *response.Alerts
	defaults pagination.Defaults
}

func NewBookHandler(svc service.ServiceInterface, alerts *response.Alerts, defaults pagination.Defaults) *BookHandler {
	return &BookHandler{
		service:  svc,
		alerts:   alerts,
		defaults: defaults,
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/books
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Create(c *gin.Context) {
	var dto model.BookDTO
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

func (h *BookHandler) create(c *gin.Context, dto *model.BookDTO) {
	created, err := h.service.Create(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header(response.HeaderLocation, fmt.Sprintf("%s/%d", basePath, *created.ID))
	h.alerts.EntityCreated(c, model.EntityName, *created.ID)
	response.JSON(c, http.StatusCreated, created)
}

func (h *BookHandler) rejectID(c *gin.Context) {
	h.alerts.Failure(c, model.EntityName, model.IDExistsMessage)
	response.ErrorWithDetails(c, http.StatusBadRequest, "idexists", model.IDExistsMessage,
		gin.H{"entityName": model.EntityName})
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PUT /api/books (no id creates)
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Update(c *gin.Context) {
	var dto model.BookDTO
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
// READ: List - GET /api/books?page=0&size=20&sort=title,asc
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) List(c *gin.Context) {
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
// READ: GetByID - GET /api/books/:id
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	dto, err := h.service.FindOne(c.Request.Context(), id)
	if errors.Is(err, model.ErrBookNotFound) {
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
// DELETE: DELETE /api/books/:id
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Delete(c *gin.Context) {
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
// SEARCH: GET /api/_search/books/:query
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Search(c *gin.Context) {
	dtos, err := h.service.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dtos)
}

func (h *BookHandler) fail(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)
	switch {
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Book request failed")
		_ = c.Error(err)
	case errors.Is(err, model.ErrAuthorReferenceNotFound):
		log.Warn().Str("path", c.Request.URL.Path).Msg("Book references a missing author")
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	response.ErrorResponse(c, status, model.ToErrorCode(err), message)
}

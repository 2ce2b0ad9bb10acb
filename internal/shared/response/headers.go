package response

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/pagination"
)

const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLink       = "Link"
	HeaderLocation   = "Location"
)

// Alerts writes the X-<app>-alert / X-<app>-error / X-<app>-params headers the
// web client turns into toast notifications.
type Alerts struct {
	appName string
}

func NewAlerts(appName string) *Alerts {
	return &Alerts{appName: appName}
}

func (a *Alerts) AlertHeader() string  { return "X-" + a.appName + "-alert" }
func (a *Alerts) ErrorHeader() string  { return "X-" + a.appName + "-error" }
func (a *Alerts) ParamsHeader() string { return "X-" + a.appName + "-params" }

// ExposedHeaders lists the headers browsers must be allowed to read.
func (a *Alerts) ExposedHeaders() []string {
	return []string{a.AlertHeader(), a.ErrorHeader(), a.ParamsHeader(), HeaderTotalCount, HeaderLink, HeaderLocation}
}

func (a *Alerts) Alert(c *gin.Context, message, param string) {
	c.Header(a.AlertHeader(), message)
	c.Header(a.ParamsHeader(), param)
}

func (a *Alerts) EntityCreated(c *gin.Context, entityName string, id int64) {
	a.Alert(c, fmt.Sprintf("A new %s is created with identifier %d", entityName, id), strconv.FormatInt(id, 10))
}

func (a *Alerts) EntityUpdated(c *gin.Context, entityName string, id int64) {
	a.Alert(c, fmt.Sprintf("A %s is updated with identifier %d", entityName, id), strconv.FormatInt(id, 10))
}

func (a *Alerts) EntityDeleted(c *gin.Context, entityName string, id int64) {
	a.Alert(c, fmt.Sprintf("A %s is deleted with identifier %d", entityName, id), strconv.FormatInt(id, 10))
}

// Failure sets the error alert headers.
func (a *Alerts) Failure(c *gin.Context, entityName, message string) {
	c.Header(a.ErrorHeader(), message)
	c.Header(a.ParamsHeader(), entityName)
}

// Paginated sets X-Total-Count and the Link header for page p served at baseURL.
func Paginated[T any](c *gin.Context, p pagination.Page[T], baseURL string) {
	c.Header(HeaderTotalCount, strconv.FormatInt(p.TotalElements, 10))
	c.Header(HeaderLink, pagination.LinkHeader(baseURL, p.Number, p.Size, p.TotalPages()))
}

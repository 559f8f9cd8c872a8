package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", err.Error())
		return false
	}
	return true
}

// readBody returns the raw body; an empty body yields nil.
func readBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		return nil, true
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "cannot read body", err.Error())
		return nil, false
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, true
	}
	return raw, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_"+name, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func parseLineIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("lineId")))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_lineId", "invalid lineId", nil)
		return 0, false
	}
	return id, true
}

func parseKindParam(c *gin.Context) (models.ServiceKind, bool) {
	kind, err := models.ParseServiceKind(c.Param("kind"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "kind", Msg: err.Error()})
		return "", false
	}
	return kind, true
}

func queryInt64(c *gin.Context, key string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func pagination(c *gin.Context) domain.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return domain.Pagination{Page: page, PageSize: size}.Normalize()
}

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"roomdesk-backend/services"
	"roomdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate accepts a bare date or a full RFC3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case services.IsConflict(err):
		utils.JSONError(c, http.StatusConflict, err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error")
	}
}

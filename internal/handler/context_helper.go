package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smart-tuition/internal/models"
	"github.com/noah-isme/smart-tuition/internal/service"
	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
	"github.com/noah-isme/smart-tuition/pkg/response"
)

// confirmed reports whether the caller approved a destructive action with
// ?confirm=true.
func confirmed(c *gin.Context) bool {
	ok, err := strconv.ParseBool(c.Query("confirm"))
	return err == nil && ok
}

func studentFilter(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		ClassName: c.Query("class"),
		Month:     c.Query("month"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// respondError adds the duplicate list to the error envelope so the caller can
// show it before asking for confirmation.
func respondError(c *gin.Context, err error) {
	if dup, ok := service.IsDuplicateError(err); ok {
		response.ErrorWithMeta(c, err, map[string]interface{}{
			"month":      dup.Month,
			"duplicates": dup.Duplicates,
		})
		return
	}
	response.Error(c, err)
}

package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/worktime-api/internal/models"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
	"github.com/noah-isme/worktime-api/pkg/logger"
)

// employeeFromContext reads the opaque identity supplied by the session layer.
func employeeFromContext(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.GetHeader(logger.EmployeeHeader))
	if id == "" {
		return "", appErrors.ErrMissingIdentity
	}
	return id, nil
}

// resolveMonth parses a YYYY-MM value, defaulting to the month containing now in loc.
func resolveMonth(raw string, now time.Time, loc *time.Location) (models.Month, error) {
	if raw == "" {
		return models.MonthOf(now.In(loc)), nil
	}
	month, err := models.ParseMonth(raw)
	if err != nil {
		return models.Month{}, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}
	return month, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return appErrors.Clone(appErrors.ErrValidation, err.Error())
}

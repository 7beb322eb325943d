package handlers

import (
	domainErrors "spark/internal/errors"
	"spark/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// statusForKind maps a domain error kind to the HTTP status it is reported as.
var statusForKind = map[domainErrors.Kind]int{
	domainErrors.KindValidation:          fiber.StatusBadRequest,
	domainErrors.KindNotFound:            fiber.StatusNotFound,
	domainErrors.KindInsufficientBalance: fiber.StatusUnprocessableEntity,
	domainErrors.KindConcurrency:         fiber.StatusConflict,
	domainErrors.KindUpstream:            fiber.StatusPaymentRequired,
}

// handleError writes err as a JSON error response. Errors that are not
// DomainErrors are logged and reported as 500 without detail.
func handleError(c *fiber.Ctx, err error) error {
	de, ok := domainErrors.As(err)
	if !ok {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		return utils.InternalError(c, "internal server error")
	}

	status, ok := statusForKind[de.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if de.Retryable() {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return utils.Error(c, status, de.Code, de.Message)
}

package handlerUtil

import (
	"SmartShopping/internal/entity"
	"SmartShopping/pkg/log"
	"SmartShopping/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle writes {"error": msg} for err. Errors carrying a *response.Error
// use its status and public message; anything else is a 500.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var unknownClass *entity.UnknownClassError
	if errors.As(err, &unknownClass) {
		fields["deployment_mismatch"] = true
		fields["class_id"] = unknownClass.ClassID
		fields["class_table_size"] = unknownClass.Size
		h.logger.WithFields(fields).Error("Detector and class table are out of sync")
	}

	if respErr, ok := response.As(err); ok {
		fields["code"] = respErr.Code
		if unknownClass == nil {
			if respErr.Code >= fiber.StatusInternalServerError {
				h.logger.WithFields(fields).Error("Operation failed with error response")
			} else {
				h.logger.WithFields(fields).Warn("Operation failed with error response")
			}
		}
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: respErr.Err.Error()})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")
	status, msg := response.Public(err)

	return c.Status(status).JSON(ErrorResponse{
		Error:   msg,
		Details: traceID,
	})
}

func (h *ErrorHandler) HandleMethodNotAllowed(c *fiber.Ctx, allow string) error {
	c.Set(fiber.HeaderAllow, allow)
	return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusMethodNotAllowed),
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}

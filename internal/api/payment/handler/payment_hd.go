package paymentHandler

import (
	contextPkg "SmartShopping/pkg/context"
	"SmartShopping/pkg/handlerUtil"
	"SmartShopping/pkg/log"

	"github.com/gofiber/fiber/v2"
)

// GenerateQR never fails: a missing or unparsable amount is treated as 0.
func (h *PaymentHandler) GenerateQR(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	amount := ctx.QueryFloat("amount", 0)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"raw_amount": ctx.Query("amount"),
	}).Debug("Processing payment QR request")

	response := h.paymentService.GenerateQR(contextPkg.FromFiberCtx(ctx), amount)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
}

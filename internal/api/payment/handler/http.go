package paymentHandler

import (
	paymentService "SmartShopping/internal/api/payment/service"
	"SmartShopping/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	log            *logrus.Logger
	middleware     middleware.Middleware
	paymentService paymentService.IPaymentService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	ps paymentService.IPaymentService,
) *PaymentHandler {
	return &PaymentHandler{
		log:            log,
		middleware:     middleware,
		paymentService: ps,
	}
}

func (h *PaymentHandler) Start(srv fiber.Router) {
	srv.Get("/generate_qr", h.GenerateQR)
}

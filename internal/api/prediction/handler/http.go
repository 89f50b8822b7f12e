package predictionHandler

import (
	"SmartShopping/internal/api/prediction"
	predictionService "SmartShopping/internal/api/prediction/service"
	"SmartShopping/internal/middleware"
	"SmartShopping/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type PredictionHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	predictionService predictionService.IPredictionService
	utils             utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ps predictionService.IPredictionService,
	utils utils.IUtils,
) *PredictionHandler {
	return &PredictionHandler{
		predictionService: ps,
		log:               log,
		validator:         validator,
		middleware:        middleware,
		utils:             utils,
	}
}

func (h *PredictionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	predict := srv.Group("/predict", h.middleware.NewCORSMiddleware(prediction.AllowedMethods, prediction.AllowedHeaders))
	predict.Use("/ws", wsMiddleware)
	predict.Get("/ws", websocket.New(h.handleStream))

	predict.Post("", h.Predict)
	predict.Options("", h.Preflight)
	predict.All("", h.MethodNotAllowed)
}

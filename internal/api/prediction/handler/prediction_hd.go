package predictionHandler

import (
	"SmartShopping/internal/api/prediction"
	"SmartShopping/internal/entity"
	contextPkg "SmartShopping/pkg/context"
	"SmartShopping/pkg/handlerUtil"
	"SmartShopping/pkg/log"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Predict accepts either a JSON body {"image": "<data url or base64>"} or a
// multipart upload in the "image" field.
func (h *PredictionHandler) Predict(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	var (
		result *entity.PredictionResponse
		err    error
	)

	file, fileErr := ctx.FormFile("image")
	if fileErr == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %w", prediction.ErrInvalidImageFile, err), ctx.Path(), "validate_image_file")
		}

		data, err := h.utils.ReadImageFile(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %w", prediction.ErrInvalidImageFile, err), ctx.Path(), "read_image_file")
		}

		result, err = h.predictionService.PredictFromBytes(c, data)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "predict")
		}
	} else {
		if len(ctx.Body()) == 0 {
			return errHandler.Handle(ctx, requestID, prediction.ErrNoImageData, ctx.Path(), "parse_request_body")
		}

		var req prediction.PredictRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %w", prediction.ErrInvalidRequestBody, err), ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %w", prediction.ErrNoImageData, err), ctx.Path(), "validate_request")
		}

		result, err = h.predictionService.PredictFromPayload(c, req.Image)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "predict")
		}
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"detections": len(result.Detections),
	}).Info("Prediction successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

// Preflight answers CORS preflight requests without touching the detector.
func (h *PredictionHandler) Preflight(ctx *fiber.Ctx) error {
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, prediction.PreflightResponse{
		Message: "CORS is working!",
	})
}

func (h *PredictionHandler) MethodNotAllowed(ctx *fiber.Ctx) error {
	return handlerUtil.New(h.log).HandleMethodNotAllowed(ctx, prediction.AllowedMethods)
}

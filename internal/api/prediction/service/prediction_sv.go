package predictionService

import (
	"SmartShopping/internal/api/prediction"
	"SmartShopping/internal/entity"
	contextPkg "SmartShopping/pkg/context"
	"SmartShopping/pkg/log"
	"SmartShopping/pkg/utils"
	"errors"
	"fmt"
	"image"

	"golang.org/x/net/context"
)

func (s *predictionService) PredictFromPayload(ctx context.Context, payload string) (*entity.PredictionResponse, error) {
	img, err := s.utils.DecodeImage(payload)
	if err != nil {
		return nil, mapDecodeError(err)
	}

	return s.predict(ctx, img)
}

func (s *predictionService) PredictFromBytes(ctx context.Context, data []byte) (*entity.PredictionResponse, error) {
	img, err := s.utils.DecodeImageBytes(data)
	if err != nil {
		return nil, mapDecodeError(err)
	}

	return s.predict(ctx, img)
}

func (s *predictionService) predict(ctx context.Context, img image.Image) (*entity.PredictionResponse, error) {
	result, err := s.detector.Detect(ctx, img, s.thresholds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", prediction.ErrDetectorFailed, err)
	}

	var boxes []entity.RawDetection
	if result != nil {
		boxes = result.Boxes
	}

	detections := make([]entity.Detection, 0, len(boxes))
	for _, raw := range boxes {
		d, err := Normalize(raw, s.classes, s.catalog)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", prediction.ErrUnknownClass, err)
		}
		detections = append(detections, d)
	}

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"detections": len(detections),
		"width":      img.Bounds().Dx(),
		"height":     img.Bounds().Dy(),
	}).Debug("Prediction completed")

	return &entity.PredictionResponse{
		Detections: detections,
		ItemPrices: s.catalog.Records(),
	}, nil
}

func mapDecodeError(err error) error {
	var decodeErr *utils.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Reason == utils.MissingData {
		return prediction.ErrNoImageData
	}
	return fmt.Errorf("%w: %w", prediction.ErrInvalidImage, err)
}

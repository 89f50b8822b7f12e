// Package detector is the seam between the gateway and the object detection model.
package detector

import (
	"SmartShopping/internal/entity"
	"context"
	"image"
)

type IDetector interface {
	// Detect runs the model on img. A result with zero boxes is not an error.
	Detect(ctx context.Context, img image.Image, th entity.Thresholds) (*entity.DetectorResult, error)
	// ClassCount reports how many classes the loaded model emits.
	ClassCount(ctx context.Context) (int, error)
	Close() error
}

const (
	BackendWebSocket = "websocket"
	BackendONNX      = "onnx"
)

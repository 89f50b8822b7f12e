//go:build !gocv
// +build !gocv

package detector

import "errors"

var ErrONNXUnavailable = errors.New("onnx backend requires the gocv build tag")

type ONNXConfig struct {
	ModelPath string
}

// NewONNXDetector returns an error when built without OpenCV.
func NewONNXDetector(ONNXConfig) (IDetector, error) {
	return nil, ErrONNXUnavailable
}

package prediction

import (
	"SmartShopping/pkg/response"
	"net/http"
)

var (
	ErrNoImageData        = response.NewError(http.StatusBadRequest, "No image data found")
	ErrInvalidRequestBody = response.NewError(http.StatusBadRequest, "Invalid request body")
	ErrInvalidImageFile   = response.NewError(http.StatusBadRequest, "Invalid image file")
	ErrInvalidImage       = response.NewError(http.StatusBadRequest, "Invalid image data")
	ErrDetectorFailed     = response.NewError(http.StatusInternalServerError, "Detection failed")
	ErrUnknownClass       = response.NewError(http.StatusInternalServerError, "Detector returned an unknown class")
)

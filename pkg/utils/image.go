package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type DecodeReason string

const (
	MissingData     DecodeReason = "missing_data"
	InvalidEncoding DecodeReason = "invalid_encoding"
)

type DecodeError struct {
	Reason DecodeReason
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode image: %s", e.Reason)
	}
	return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeImage accepts a data URL ("data:image/jpeg;base64,....") or a bare
// base64 string. Everything up to and including the first comma is dropped.
func (u *utils) DecodeImage(payload string) (image.Image, error) {
	body := strings.TrimSpace(payload)
	if i := strings.IndexByte(body, ','); i >= 0 {
		body = body[i+1:]
	}
	if body == "" {
		return nil, &DecodeError{Reason: MissingData}
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, &DecodeError{Reason: InvalidEncoding, Err: err}
	}

	return u.DecodeImageBytes(data)
}

func (u *utils) DecodeImageBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: MissingData}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: InvalidEncoding, Err: err}
	}

	return img, nil
}

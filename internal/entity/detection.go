package entity

// Thresholds are the tuning parameters handed to the detector on every call.
type Thresholds struct {
	Confidence float64
	IoU        float64
	InputSize  int
}

// RawDetection is one box as emitted by the detector, in pixel units of the input image.
type RawDetection struct {
	ClassID    int     `json:"cls"`
	Confidence float64 `json:"conf"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// DetectorResult wraps the detector output. A nil Boxes means the detector
// reported no boxes collection at all, which is not an error.
type DetectorResult struct {
	Boxes []RawDetection
}

type Detection struct {
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	ClassName  string  `json:"class"`
	Price      float64 `json:"price"`
}

type PredictionResponse struct {
	Detections []Detection         `json:"detections"`
	ItemPrices []PriceCatalogEntry `json:"item_prices"`
}

package predictionService

import (
	"SmartShopping/internal/entity"
	"SmartShopping/pkg/catalog"
)

// Normalize turns one detector box into a priced Detection. Geometry and
// confidence are copied as-is; a catalog miss prices the item at 0.
func Normalize(raw entity.RawDetection, classes *entity.ClassTable, cat catalog.ICatalog) (entity.Detection, error) {
	name, err := classes.Name(raw.ClassID)
	if err != nil {
		return entity.Detection{}, err
	}

	return entity.Detection{
		CenterX:    raw.CenterX,
		CenterY:    raw.CenterY,
		Width:      raw.Width,
		Height:     raw.Height,
		Confidence: raw.Confidence,
		ClassName:  name,
		Price:      cat.Lookup(name),
	}, nil
}

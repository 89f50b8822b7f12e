package entity

// PriceCatalogEntry keeps the column names of the catalog source as JSON keys,
// the web client reads item.Name and item.Price.
type PriceCatalogEntry struct {
	Name  string  `json:"Name" db:"name"`
	Price float64 `json:"Price" db:"price"`
}

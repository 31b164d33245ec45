package domain

// ProductDetail is a product together with its reviews, each carrying the
// reviewer's public projection.
type ProductDetail struct {
	Product *Product `json:"product"`
	Reviews []Review `json:"reviews"`
}

// CatalogPage is one page of a catalog listing.
type CatalogPage struct {
	Products      []Product `json:"products"`
	TotalPages    int64     `json:"totalPages"`
	TotalProducts int64     `json:"totalProducts"`
}

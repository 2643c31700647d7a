package cart

// Line is one entry in the cart: a single product and the quantity the
// user intends to buy. The JSON shape is the persisted layout and must
// stay stable; there is no version field, so a reader that cannot make
// sense of the payload starts over with an empty cart.
type Line struct {
	ProductID            string `json:"_id"`
	Name                 string `json:"name"`
	Price                int64  `json:"price"` // smallest currency unit
	Quantity             int    `json:"quantity"`
	Image                string `json:"image"`
	Stock                int    `json:"stock"`
	RequiresPrescription bool   `json:"requiresPrescription"`
}

// Candidate carries the catalog snapshot for a product being added.
// Display fields are copied at add time; the cart never re-fetches the
// catalog to keep them in sync.
type Candidate struct {
	ProductID            string
	Name                 string
	Price                int64
	Image                string
	Stock                int
	RequiresPrescription bool
}

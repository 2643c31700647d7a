package catalog

// Medicine mirrors the upstream catalog document.
type Medicine struct {
	ID                   string  `json:"_id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	Price                int64   `json:"price"` // smallest currency unit
	Category             string  `json:"category"`
	Stock                int     `json:"stock"`
	RequiresPrescription bool    `json:"requiresPrescription"`
	Images               []Image `json:"images"`
	Manufacturer         string  `json:"manufacturer"`
	ExpiryDate           string  `json:"expiryDate"`
}

type Image struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

// PrimaryImage picks the image flagged primary, falling back to the
// first one.
func (m Medicine) PrimaryImage() string {
	for _, img := range m.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(m.Images) > 0 {
		return m.Images[0].URL
	}
	return ""
}

// Preset is a saved bundle of medicines the user reorders together.
type Preset struct {
	ID        string        `json:"_id,omitempty"`
	Name      string        `json:"name"`
	Medicines []PresetEntry `json:"medicines"`
}

type PresetEntry struct {
	Medicine PresetMedicine `json:"medicine"`
	Quantity int            `json:"quantity"`
}

type PresetMedicine struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Price  int64   `json:"price"`
	Images []Image `json:"images"`
}

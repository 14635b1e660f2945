package models

// DiscountRow is one discount line for a board section
type DiscountRow struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Disc       string `json:"disc"`
	CertCharge string `json:"cert_charge"`
}

// DiscountSection names a contiguous inclusive id range in the settings list
type DiscountSection struct {
	Name    string
	FirstID int
	LastID  int
}

// DiscountSections returns the fixed board sections keyed by upper-case name
func DiscountSections() map[string]DiscountSection {
	return map[string]DiscountSection{
		"PAMP":     {Name: "PAMP", FirstID: 11, LastID: 21},
		"LOCAL":    {Name: "LOCAL", FirstID: 22, LastID: 28},
		"VALCAMBI": {Name: "VALCAMBI", FirstID: 29, LastID: 36},
	}
}

// DiscountsPayload is the /api/discounts/{section} response body
type DiscountsPayload struct {
	Status  string        `json:"status"`
	Section string        `json:"section"`
	Rows    []DiscountRow `json:"rows"`
}

package models

// Keys for the four display slots and the two silver settings.
const (
	SlotTopLeft     = "TL"
	SlotTopRight    = "TR"
	SlotBottomLeft  = "BL"
	SlotBottomRight = "BR"
	KeySilverBuy    = "SILVER_BUY"
	KeySilverSell   = "SILVER_SELL"
)

// Placeholder is rendered in every field when a whole payload degrades.
// InvalidValue is rendered for a single slot whose stored setting cannot be
// parsed; sibling slots are unaffected.
const (
	Placeholder  = "—"
	InvalidValue = "INVALID"
)

// Record ids of the two silver settings in the settings list.
const (
	SilverBuyItemID  = 5
	SilverSellItemID = 6
)

// SlotConfig ties a display slot to its settings record id, its display tag
// and whether the secondary multiplier applies.
type SlotConfig struct {
	Key          string
	ItemID       int
	Tag          string
	UseSecondary bool
}

// BoardSlots returns the four display slots in render order.
func BoardSlots() []SlotConfig {
	return []SlotConfig{
		{Key: SlotTopLeft, ItemID: 1, Tag: "22EXCH", UseSecondary: true},
		{Key: SlotBottomLeft, ItemID: 2, Tag: "24EXCH", UseSecondary: false},
		{Key: SlotTopRight, ItemID: 3, Tag: "22CASH", UseSecondary: true},
		{Key: SlotBottomRight, ItemID: 4, Tag: "24CASH", UseSecondary: false},
	}
}

// SettingsSnapshot maps slot keys to the raw strings stored upstream.
// Replaced wholesale on refresh.
type SettingsSnapshot map[string]string

// SlotValue is one rendered board cell.
type SlotValue struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// ValuesPayload is the /api/values response body.
type ValuesPayload struct {
	Status     string    `json:"status"`
	TL         SlotValue `json:"TL"`
	TR         SlotValue `json:"TR"`
	BL         SlotValue `json:"BL"`
	BR         SlotValue `json:"BR"`
	SilverBuy  string    `json:"silver_buy"`
	SilverSell string    `json:"silver_sell"`
}

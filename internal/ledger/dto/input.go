package dto

type TransactionLineInput struct {
	ItemID int64 `json:"item_id"`
	// Identifier is resolved to an item when ItemID is zero. Accepts a SKU,
	// part number, or name fragment.
	Identifier     string `json:"identifier"`
	QuantityChange int64  `json:"quantity_change"`
	Note           string `json:"note"`
}

type RecordTransactionInput struct {
	Reference  string                 `json:"reference"`
	Notes      string                 `json:"notes"`
	RecordedBy string                 `json:"recorded_by"`
	Lines      []TransactionLineInput `json:"lines"`
}

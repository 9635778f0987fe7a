package dto

type CreateInput struct {
	JobNumber   string      `json:"job_number"`
	JobName     string      `json:"job_name"`
	RequestedBy string      `json:"requested_by"`
	NeededBy    string      `json:"needed_by"` // YYYY-MM-DD, optional
	Notes       string      `json:"notes"`
	Lines       []LineInput `json:"lines"`
}

type LineInput struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

// EditInput patches header fields and adjusts line commitments on a live
// reservation. Nil header fields are left unchanged.
type EditInput struct {
	JobName     *string         `json:"job_name"`
	RequestedBy *string         `json:"requested_by"`
	NeededBy    *string         `json:"needed_by"`
	Notes       *string         `json:"notes"`
	Lines       []EditLineInput `json:"lines"`
	NewLines    []LineInput     `json:"new_lines"`
}

// EditLineInput sets the outstanding commitment on an existing line.
type EditLineInput struct {
	LineID       int64 `json:"line_id"`
	CommittedQty int64 `json:"committed_qty"`
}

type UpdateStatusInput struct {
	Status string `json:"status"`
	// ActualConsumed is consulted only when moving to fulfilled.
	ActualConsumed map[int64]int64 `json:"actual_consumed"`
}

package model

import "strings"

// FinishOptions are the recognized surface-finish codes carried as the final
// SKU segment.
func FinishOptions() []string {
	return []string{"BL", "C2", "DB", "0R"}
}

// NormalizeFinish upper-cases and validates a finish code. Unknown codes map
// to nil rather than erroring, matching how legacy rows are cleaned up.
func NormalizeFinish(finish *string) *string {
	if finish == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*finish))
	for _, opt := range FinishOptions() {
		if normalized == opt {
			return &normalized
		}
	}
	return nil
}

// ParseSKU splits a SKU into its base part number and optional finish code.
// The finish is the last dash-separated segment when it matches a known code
// and at least one other segment precedes it.
func ParseSKU(sku string) (partNumber string, finish *string) {
	normalized := strings.TrimSpace(sku)
	if normalized == "" {
		return "", nil
	}

	var segments []string
	for _, seg := range strings.Split(normalized, "-") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return "", nil
	}

	if len(segments) > 1 {
		last := strings.ToUpper(segments[len(segments)-1])
		for _, opt := range FinishOptions() {
			if last == opt {
				finish = &last
				segments = segments[:len(segments)-1]
				break
			}
		}
	}

	return strings.Join(segments, "-"), finish
}

// ComposeSKU joins a part number and finish code back into a SKU.
func ComposeSKU(partNumber string, finish *string) string {
	segments := make([]string, 0, 2)
	if trimmed := strings.TrimSpace(partNumber); trimmed != "" {
		segments = append(segments, trimmed)
	}
	if normalized := NormalizeFinish(finish); normalized != nil {
		segments = append(segments, *normalized)
	}
	return strings.Join(segments, "-")
}

package request

// RunChecksRequest narrows a run-all to the listed checks. An empty body runs all four.
// Names are resolved by notice.ParseKind, the same as the /checks/:kind route.
type RunChecksRequest struct {
	Checks []string `json:"checks" binding:"omitempty,dive,required"`
}

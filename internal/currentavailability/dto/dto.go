package dto

type SweepResult struct {
	Refreshed int      `json:"refreshed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

package model

// SweepResult counts rows removed by one janitor pass.
type SweepResult struct {
	Tokens   int64 `json:"tokens"`
	Sessions int64 `json:"sessions"`
}

package models

import "time"

// UserID identifies the owner of a collection.
type UserID string

// ValuationKey identifies one evaluation of one user's collection.
type ValuationKey struct {
	Date Date   `json:"date"`
	User UserID `json:"user"`
}

// ValuationSnapshot is the stored total value of a collection on a given day.
// There is at most one per key and it is never rewritten.
type ValuationSnapshot struct {
	Date      Date       `json:"date"`
	User      UserID     `json:"user"`
	Total     PriceGuide `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}

// Key returns the snapshot's (date, user) key.
func (s ValuationSnapshot) Key() ValuationKey {
	return ValuationKey{Date: s.Date, User: s.User}
}

// ValuationHistoryResponse is the API response for a user's valuation history.
type ValuationHistoryResponse struct {
	User      UserID              `json:"user"`
	From      Date                `json:"from"`
	Snapshots []ValuationSnapshot `json:"snapshots"`
}

// ImportResult summarizes a collection import.
type ImportResult struct {
	User        UserID `json:"user"`
	Cards       int    `json:"cards"`
	TotalCopies int    `json:"total_copies"`
	NewSets     int    `json:"new_sets"`
}

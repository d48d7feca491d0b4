package shared

import (
	"time"
)

const (
	// TimeoutDuration is the maximum time to wait on a vendor request before timing out.
	TimeoutDuration = time.Second * 10
)

// RefreshRequest represents a request to refresh a symbol's data for a range.
type RefreshRequest struct {
	Symbol string
	Range  Range
	Force  bool
}

// NewRefreshRequest initializes a new refresh request.
func NewRefreshRequest(symbol string, rng Range, force bool) RefreshRequest {
	return RefreshRequest{
		Symbol: symbol,
		Range:  rng,
		Force:  force,
	}
}

// SearchRequest represents a symbol search whose results are delivered on the
// response channel.
type SearchRequest struct {
	Term     string
	Response chan []SearchResult
}

// NewSearchRequest initializes a new search request.
func NewSearchRequest(term string) *SearchRequest {
	return &SearchRequest{
		Term:     term,
		Response: make(chan []SearchResult, 1),
	}
}

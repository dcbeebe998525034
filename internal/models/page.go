package models

// PageInfo is the pagination metadata reported by the server.
type PageInfo struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Page is one page of a server-side paginated listing.
type Page[T any] struct {
	Content []T      `json:"content"`
	Page    PageInfo `json:"page"`
}

// HasNext reports whether the server has pages after this one.
func (p *Page[T]) HasNext() bool {
	return p.Page.Number+1 < p.Page.TotalPages
}

// PendingCount is the payload of a pending-count endpoint.
type PendingCount struct {
	PendingReviewCount int `json:"pendingReviewCount"`
}

// Envelope is the response wrapper used by every platform endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Package domain provides types shared by the domain packages.
package domain

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Page holds pagination options for list operations.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps Limit into (0, MaxLimit] and Offset to >= 0.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Paginate slices an in-memory result set.
func Paginate[T any](all []T, p Page) ListResult[T] {
	p = p.Normalize()
	res := ListResult[T]{
		Items:      []T{},
		TotalCount: int64(len(all)),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if p.Offset >= len(all) {
		return res
	}
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	res.Items = append(res.Items, all[p.Offset:end]...)
	return res
}

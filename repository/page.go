package repository

// Page describes the requested slice of a listing.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func (p Page) Limit() uint {
	if p.Size <= 0 || p.Size > maxPageSize {
		return defaultPageSize
	}
	return uint(p.Size)
}

func (p Page) Offset() uint {
	if p.Number <= 0 {
		return 0
	}
	return uint(p.Number) * p.Limit()
}

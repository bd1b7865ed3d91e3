package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page turns a 1-based page number and page size into an offset and limit.
func Page(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size
}

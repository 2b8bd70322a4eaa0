package app

const (
	DefaultPage  = 1
	DefaultLimit = 6
)

// NormalizePage applies defaults and clamps page/limit so the computed
// skip can never go negative. Out-of-range values are normalized rather
// than rejected; an out-of-range page simply yields an empty page.
func NormalizePage(page, limit int) (p, l, skip int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit, (page - 1) * limit
}

// TotalPages is ceil(total/limit) for limit > 0.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		limit = DefaultLimit
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

package filter

// Paginate slices an already-filtered record set locally. A limit of 0
// returns everything on one page. Page numbers start at 1.
func Paginate[T any](records []T, page, limit int) (out []T, totalPages, totalItems int) {
	totalItems = len(records)

	if limit <= 0 {
		if totalItems == 0 {
			return []T{}, 0, 0
		}
		return records, 1, totalItems
	}

	totalPages = (totalItems + limit - 1) / limit
	if page < 1 {
		page = 1
	}

	startIdx := (page - 1) * limit
	if startIdx >= totalItems {
		return []T{}, totalPages, totalItems
	}

	endIdx := startIdx + limit
	if endIdx > totalItems {
		endIdx = totalItems
	}
	return records[startIdx:endIdx], totalPages, totalItems
}

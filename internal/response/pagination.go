package response

// Pagination describes where a page sits in a result set. NextOffset is set
// exactly when HasMore is true, and then equals Offset+Count.
type Pagination struct {
	Total      *int `json:"total,omitempty"`
	Count      int  `json:"count"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
	NextOffset *int `json:"next_offset,omitempty"`
}

// Paginate derives has_more and next_offset. With an unknown total (nil),
// a full page (count == limit) is the only hint that more results exist.
// count is not clamped to limit.
func Paginate(total *int, count, offset, limit int) Pagination {
	p := Pagination{
		Total:  total,
		Count:  count,
		Offset: offset,
	}
	if total != nil {
		p.HasMore = offset+count < *total
	} else {
		p.HasMore = count == limit
	}
	if p.HasMore {
		next := offset + count
		p.NextOffset = &next
	}
	return p
}

// Known wraps a known total for Paginate.
func Known(total int) *int {
	return &total
}

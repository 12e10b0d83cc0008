package catalog

// DefaultPageSize is the number of movies returned when the caller does not
// ask for a specific page size.
const DefaultPageSize = 20

// Page is a zero-indexed pagination window.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page to usable values: negative page numbers become 0,
// non-positive sizes become DefaultPageSize.
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Skip is the number of documents to skip for this window.
func (p Page) Skip() int64 {
	return int64(p.Number) * int64(p.Size)
}

// Limit is the maximum number of documents in this window.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// CountTotal reports whether the total match count should be computed for
// this page. Only the first page pays for a full count; deeper pages report
// a total of zero, meaning "not recomputed". Callers must be told about
// this trade.
func (p Page) CountTotal() bool {
	return p.Number == 0
}

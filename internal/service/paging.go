package service

// pageOffset maps the raw from/size pair to a limit/offset window. Results
// land on page index from/size (integer division), so a `from` inside a page
// snaps back to that page's start.
func pageOffset(from, size int) (limit, offset int, err error) {
	if from < 0 || size < 1 {
		return 0, 0, ErrInvalidPaging
	}
	page := from / size
	return size, page * size, nil
}

package page

import "github.com/kailas-cloud/unidash/internal/domain/record"

// DefaultSize is used when a caller passes a non-positive page size.
const DefaultSize = 20

// Page is one bounds-safe slice of an ordered record sequence.
type Page struct {
	Items      []record.Record
	Number     int // 1-indexed, always within [1, TotalPages]
	Size       int
	TotalPages int
	TotalItems int
	StartIndex int // 0-based offset of the first item
	EndIndex   int // exclusive; min(StartIndex+Size, TotalItems)
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// TotalPages returns max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	n := (total + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}

// Clamp moves number into [1, TotalPages(total, size)].
func Clamp(number, total, size int) int {
	last := TotalPages(total, size)
	if number < 1 {
		return 1
	}
	if number > last {
		return last
	}
	return number
}

// Paginate returns page number of records. Out-of-range numbers are clamped.
func Paginate(records []record.Record, number, size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	total := len(records)
	number = Clamp(number, total, size)

	start := (number - 1) * size
	end := min(start+size, total)

	items := make([]record.Record, end-start)
	copy(items, records[start:end])

	return Page{
		Items:      items,
		Number:     number,
		Size:       size,
		TotalPages: TotalPages(total, size),
		TotalItems: total,
		StartIndex: start,
		EndIndex:   end,
	}
}

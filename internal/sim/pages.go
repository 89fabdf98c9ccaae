package sim

import "strconv"

// PageRange derives first/last page numbers from an item's raw page list.
// Only values composed entirely of decimal digits participate; blank,
// roman-numeral, and otherwise non-numeric labels are invisible to the
// range. Both results are nil when no numeric pages exist.
func PageRange(pages []PageDescriptor) (first, last *int) {
	for _, page := range pages {
		if page.PageNumber == "" || !allDigits(page.PageNumber) {
			continue
		}
		number, err := strconv.Atoi(page.PageNumber)
		if err != nil {
			continue
		}
		if first == nil || number < *first {
			n := number
			first = &n
		}
		if last == nil || number > *last {
			n := number
			last = &n
		}
	}
	return first, last
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

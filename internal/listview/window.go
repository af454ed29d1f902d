package listview

// Gap marks an elided run of pages in a window returned by PageWindow.
const Gap = -1

// maxVisible is the most numbered entries shown before eliding.
const maxVisible = 5

// PageWindow returns the 0-based page numbers to offer for a pager,
// with Gap entries where pages are elided. Small page counts list every
// page; larger ones always include the first and last page plus a
// window around the current page. A result for one page or fewer is nil:
// no pager is rendered at all.
func PageWindow(current, total int) []int {
	if total <= 1 {
		return nil
	}
	if total <= maxVisible+2 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i
		}
		return pages
	}

	pages := []int{0}

	start := max(1, current-1)
	end := min(total-2, current+1)

	if start > 1 {
		pages = append(pages, Gap)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < total-2 {
		pages = append(pages, Gap)
	}

	return append(pages, total-1)
}

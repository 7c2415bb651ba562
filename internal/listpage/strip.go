package listpage

// windowSize is how many page numbers the strip shows around the current page.
const windowSize = 5

// PageLink is one slot of the strip: a page number or an ellipsis.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// Pager is the page-number strip under a table.
type Pager struct {
	Current      int
	Total        int
	Prev         int
	Next         int
	PrevDisabled bool
	NextDisabled bool
	Links        []PageLink
}

// Strip builds the pager for current of total pages: prev/next disabled at the
// bounds, a window of 5 numbers centred on current, and the first/last page
// with an ellipsis when the window does not reach them.
func Strip(current, total int) Pager {
	if total < 1 {
		return Pager{Current: 1, Prev: 1, Next: 1, PrevDisabled: true, NextDisabled: true}
	}
	current = min(max(current, 1), total)

	p := Pager{
		Current:      current,
		Total:        total,
		Prev:         max(current-1, 1),
		Next:         min(current+1, total),
		PrevDisabled: current <= 1,
		NextDisabled: current >= total,
	}

	start := current - windowSize/2
	end := current + windowSize/2
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > total {
		start -= end - total
		end = total
	}
	start = max(start, 1)

	if start > 1 {
		p.Links = append(p.Links, PageLink{Number: 1})
		if start > 2 {
			p.Links = append(p.Links, PageLink{Ellipsis: true})
		}
	}
	for n := start; n <= end; n++ {
		p.Links = append(p.Links, PageLink{Number: n, Current: n == current})
	}
	if end < total {
		if end < total-1 {
			p.Links = append(p.Links, PageLink{Ellipsis: true})
		}
		p.Links = append(p.Links, PageLink{Number: total})
	}
	return p
}

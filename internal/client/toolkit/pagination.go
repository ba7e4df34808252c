package toolkit

import (
	"strconv"
	"sync"
)

const DefaultPageSize = 10

// PageLink is one entry of a compressed page sequence. Ellipsis marks a gap.
type PageLink int

const Ellipsis PageLink = 0

func (p PageLink) String() string {
	if p == Ellipsis {
		return "..."
	}
	return strconv.Itoa(int(p))
}

// TotalPages is ceil(total/size); zero for an empty collection or bad size.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// PageItems returns the slice of items shown on page (1-based).
func PageItems[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end:end]
}

const pageWindow = 2

// PageRange lists the page links to render: the first and last page plus
// pageWindow pages either side of page. A single hidden page is shown
// instead of an ellipsis.
func PageRange(page, totalPages int) []PageLink {
	var pages []int
	for i := 1; i <= totalPages; i++ {
		if i == 1 || i == totalPages || (i >= page-pageWindow && i <= page+pageWindow) {
			pages = append(pages, i)
		}
	}

	out := make([]PageLink, 0, len(pages)+2)
	prev := 0
	for _, p := range pages {
		if prev != 0 {
			switch p - prev {
			case 1:
			case 2:
				out = append(out, PageLink(prev+1))
			default:
				out = append(out, Ellipsis)
			}
		}
		out = append(out, PageLink(p))
		prev = p
	}
	return out
}

func linkRange(from, to int) []PageLink {
	if to < from {
		return []PageLink{}
	}
	out := make([]PageLink, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, PageLink(i))
	}
	return out
}

// SiblingRange is the fixed-width variant: it always renders the same
// number of slots (siblings*2 + 5) once there are enough pages.
func SiblingRange(total, size, siblings, page int) []PageLink {
	count := TotalPages(total, size)
	if siblings < 0 {
		siblings = 0
	}
	if siblings+5 >= count {
		return linkRange(1, count)
	}

	left := max(page-siblings, 1)
	right := min(page+siblings, count)
	leftDots := left > 2
	rightDots := right < count-2

	switch {
	case !leftDots && rightDots:
		return append(linkRange(1, 3+2*siblings), Ellipsis, PageLink(count))
	case leftDots && !rightDots:
		n := 3 + 2*siblings
		return append([]PageLink{1, Ellipsis}, linkRange(count-n+1, count)...)
	case leftDots && rightDots:
		out := append([]PageLink{1, Ellipsis}, linkRange(left, right)...)
		return append(out, Ellipsis, PageLink(count))
	default:
		return linkRange(1, count)
	}
}

// Paginator tracks page, page size and collection size for one view.
type Paginator struct {
	onChange func(page, size int)

	mu    sync.RWMutex
	page  int
	size  int
	total int
}

// NewPaginator starts on page 1. A non-positive size means DefaultPageSize.
func NewPaginator(total, size int, onChange func(page, size int)) *Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Paginator{onChange: onChange, page: 1, size: size, total: max(total, 0)}
}

func (p *Paginator) Page() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.page
}

func (p *Paginator) PageSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

func (p *Paginator) TotalItems() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total
}

func (p *Paginator) TotalPages() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return TotalPages(p.total, p.size)
}

// HandlePageChange moves to page; pages outside [1, TotalPages] are ignored.
func (p *Paginator) HandlePageChange(page int) bool {
	p.mu.Lock()
	if page < 1 || page > TotalPages(p.total, p.size) {
		p.mu.Unlock()
		return false
	}
	p.page = page
	size := p.size
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(page, size)
	}
	return true
}

// HandlePageSizeChange sets the page size and returns to page 1.
func (p *Paginator) HandlePageSizeChange(size int) {
	if size <= 0 {
		return
	}
	p.mu.Lock()
	p.size = size
	p.page = 1
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(1, size)
	}
}

func (p *Paginator) Next() bool     { return p.HandlePageChange(p.Page() + 1) }
func (p *Paginator) Previous() bool { return p.HandlePageChange(p.Page() - 1) }
func (p *Paginator) First() bool    { return p.HandlePageChange(1) }
func (p *Paginator) Last() bool     { return p.HandlePageChange(p.TotalPages()) }

// SetTotalItems updates the collection size and pulls the page back into range.
func (p *Paginator) SetTotalItems(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = max(total, 0)
	p.page = min(p.page, max(TotalPages(p.total, p.size), 1))
}

func (p *Paginator) Range() []PageLink {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PageRange(p.page, TotalPages(p.total, p.size))
}

// Paginate returns the current page of items.
func Paginate[T any](p *Paginator, items []T) []T {
	p.mu.RLock()
	page, size := p.page, p.size
	p.mu.RUnlock()
	return PageItems(items, page, size)
}

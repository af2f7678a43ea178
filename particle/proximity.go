package particle

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// A tag packs a particle's grid cell into 32 bits: the row in the top 12
// bits and the column, with 8 fractional bits, below it. Sorting by tag
// orders particles row by row, so the neighbors of a cell are found in two
// short runs of the sorted proxies.
const (
	xTruncBits = 12
	yTruncBits = 12
	tagBits    = 32
	yOffset    = 1 << (yTruncBits - 1)
	yShift     = tagBits - yTruncBits
	xShift     = tagBits - yTruncBits - xTruncBits
	xScale     = 1 << xShift
	xOffset    = xScale * (1 << (xTruncBits - 1))
	xMask      = (1<<xTruncBits - 1) << xShift
)

// computeTag returns the tag of a position given in diameters.
func computeTag(x, y float64) uint32 {
	return uint32(int64(y+yOffset))<<yShift + uint32(int64(xScale*x+xOffset))
}

// computeRelativeTag offsets tag by whole cells.
func computeRelativeTag(tag uint32, x, y int32) uint32 {
	return tag + uint32(y<<yShift) + uint32(x<<xShift)
}

type proxy struct {
	index int32
	tag   uint32
}

func compareProxy(a, b proxy) int {
	if c := cmp.Compare(a.tag, b.tag); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}

// updateProxies retags every particle and sorts the proxies by (tag, index).
func (s *System) updateProxies() {
	pos := s.position.data
	s.proxies = s.proxies[:0]
	for i := 0; i < s.count; i++ {
		p := pos[i]
		s.proxies = append(s.proxies, proxy{
			index: int32(i),
			tag:   computeTag(s.invDiameter*p.X, s.invDiameter*p.Y),
		})
	}
	slices.SortFunc(s.proxies, compareProxy)
}

// findPairs calls fn once for every unordered pair of particles in the
// same or adjacent cells. Enumeration follows the sorted proxies.
func (s *System) findPairs(fn func(a, b int32)) {
	proxies := s.proxies
	n := len(proxies)
	c := 0
	for a := 0; a < n; a++ {
		pa := proxies[a]
		rightTag := computeRelativeTag(pa.tag, 1, 0)
		for b := a + 1; b < n; b++ {
			if rightTag < proxies[b].tag {
				break
			}
			fn(pa.index, proxies[b].index)
		}

		bottomLeftTag := computeRelativeTag(pa.tag, -1, 1)
		for ; c < n; c++ {
			if bottomLeftTag <= proxies[c].tag {
				break
			}
		}
		bottomRightTag := computeRelativeTag(pa.tag, 1, 1)
		for b := c; b < n; b++ {
			if bottomRightTag < proxies[b].tag {
				break
			}
			fn(pa.index, proxies[b].index)
		}
	}
}

// insideBounds iterates the particles whose tag falls inside a box. It may
// report particles slightly outside the box but never misses one inside.
type insideBounds struct {
	system     *System
	xLower     uint32
	xUpper     uint32
	next, last int
}

func (s *System) insideBounds(box r2.Box) insideBounds {
	lowerTag := computeTag(s.invDiameter*box.Min.X-1, s.invDiameter*box.Min.Y-1)
	upperTag := computeTag(s.invDiameter*box.Max.X+1, s.invDiameter*box.Max.Y+1)

	first, _ := slices.BinarySearchFunc(s.proxies, lowerTag, func(p proxy, tag uint32) int {
		return cmp.Compare(p.tag, tag)
	})
	last, found := slices.BinarySearchFunc(s.proxies, upperTag, func(p proxy, tag uint32) int {
		return cmp.Compare(p.tag, tag)
	})
	for found && last < len(s.proxies) && s.proxies[last].tag == upperTag {
		last++
	}

	return insideBounds{
		system: s,
		xLower: lowerTag & xMask,
		xUpper: upperTag & xMask,
		next:   first,
		last:   last,
	}
}

// Next returns the next particle index, or false when exhausted.
func (e *insideBounds) Next() (int32, bool) {
	for e.next < e.last {
		p := e.system.proxies[e.next]
		e.next++
		xTag := p.tag & xMask
		if e.xLower <= xTag && xTag <= e.xUpper {
			return p.index, true
		}
	}
	return InvalidIndex, false
}

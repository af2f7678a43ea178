package particle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// voronoiDiagram rasterizes the Voronoi cells of a set of generators on a
// grid. Adjacent cells of three different generators yield the Delaunay
// triangles used as elastic triads.
type voronoiDiagram struct {
	generators []voronoiGenerator
	countX     int
	countY     int
	// cells holds the generator owning each grid cell, or -1.
	cells []int32
}

type voronoiGenerator struct {
	center r2.Vec
	tag    int32
}

type voronoiTask struct {
	x, y, i   int
	generator int32
}

func newVoronoiDiagram(capacity int) *voronoiDiagram {
	return &voronoiDiagram{generators: make([]voronoiGenerator, 0, capacity)}
}

func (d *voronoiDiagram) addGenerator(center r2.Vec, tag int32) {
	d.generators = append(d.generators, voronoiGenerator{center: center, tag: tag})
}

// generate fills the grid with cells of size radius around the generators,
// padded by margin.
func (d *voronoiDiagram) generate(radius, margin float64) {
	if len(d.generators) == 0 {
		return
	}
	inverseRadius := 1 / radius
	lower := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	upper := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, g := range d.generators {
		lower = r2.Vec{X: math.Min(lower.X, g.center.X), Y: math.Min(lower.Y, g.center.Y)}
		upper = r2.Vec{X: math.Max(upper.X, g.center.X), Y: math.Max(upper.Y, g.center.Y)}
	}
	lower = r2.Sub(lower, r2.Vec{X: margin, Y: margin})
	upper = r2.Add(upper, r2.Vec{X: margin, Y: margin})
	d.countX = 1 + int(inverseRadius*(upper.X-lower.X))
	d.countY = 1 + int(inverseRadius*(upper.Y-lower.Y))
	d.cells = make([]int32, d.countX*d.countY)
	for i := range d.cells {
		d.cells[i] = -1
	}

	queue := make([]voronoiTask, 0, 4*d.countX*d.countY)
	for k := range d.generators {
		g := &d.generators[k]
		g.center = r2.Scale(inverseRadius, r2.Sub(g.center, lower))
		x, y := int(g.center.X), int(g.center.Y)
		if x >= 0 && y >= 0 && x < d.countX && y < d.countY {
			queue = append(queue, voronoiTask{x, y, x + y*d.countX, int32(k)})
		}
	}

	// Flood fill from the generators.
	for head := 0; head < len(queue); head++ {
		t := queue[head]
		if d.cells[t.i] >= 0 {
			continue
		}
		d.cells[t.i] = t.generator
		queue = d.pushNeighbors(queue, t)
	}
	queue = queue[:0]

	// Seed the refinement from every cell border between two generators.
	for y := 0; y < d.countY; y++ {
		for x := 0; x < d.countX-1; x++ {
			i := x + y*d.countX
			a, b := d.cells[i], d.cells[i+1]
			if a != b {
				queue = append(queue, voronoiTask{x, y, i, b}, voronoiTask{x + 1, y, i + 1, a})
			}
		}
	}
	for y := 0; y < d.countY-1; y++ {
		for x := 0; x < d.countX; x++ {
			i := x + y*d.countX
			a, b := d.cells[i], d.cells[i+d.countX]
			if a != b {
				queue = append(queue, voronoiTask{x, y, i, b}, voronoiTask{x, y + 1, i + d.countX, a})
			}
		}
	}

	// Hand cells to the nearer generator until nothing changes.
	for head := 0; head < len(queue); head++ {
		t := queue[head]
		a, b := d.cells[t.i], t.generator
		if a == b {
			continue
		}
		ac := d.generators[a].center
		bc := d.generators[b].center
		cell := r2.Vec{X: float64(t.x), Y: float64(t.y)}
		if r2.Norm2(r2.Sub(ac, cell)) > r2.Norm2(r2.Sub(bc, cell)) {
			d.cells[t.i] = b
			queue = d.pushNeighbors(queue, t)
		}
	}
}

func (d *voronoiDiagram) pushNeighbors(queue []voronoiTask, t voronoiTask) []voronoiTask {
	x, y, i, g := t.x, t.y, t.i, t.generator
	if x > 0 {
		queue = append(queue, voronoiTask{x - 1, y, i - 1, g})
	}
	if y > 0 {
		queue = append(queue, voronoiTask{x, y - 1, i - d.countX, g})
	}
	if x < d.countX-1 {
		queue = append(queue, voronoiTask{x + 1, y, i + 1, g})
	}
	if y < d.countY-1 {
		queue = append(queue, voronoiTask{x, y + 1, i + d.countX, g})
	}
	return queue
}

// nodes calls fn with the tags of each triangle of neighboring generators.
func (d *voronoiDiagram) nodes(fn func(a, b, c int32)) {
	for y := 0; y < d.countY-1; y++ {
		for x := 0; x < d.countX-1; x++ {
			i := x + y*d.countX
			a := d.cells[i]
			b := d.cells[i+1]
			c := d.cells[i+d.countX]
			e := d.cells[i+1+d.countX]
			if b == c || a < 0 || b < 0 || c < 0 || e < 0 {
				continue
			}
			if a != b && a != c {
				fn(d.generators[a].tag, d.generators[b].tag, d.generators[c].tag)
			}
			if e != b && e != c {
				fn(d.generators[b].tag, d.generators[e].tag, d.generators[c].tag)
			}
		}
	}
}

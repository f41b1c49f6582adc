package drawing

import "gonum.org/v1/gonum/spatial/r2"

// Simplify reduces a polyline while keeping it within tolerance of the
// original. Unless highQuality is set, a radial distance pass drops
// clustered points before Douglas-Peucker runs. The first and last points
// are always kept.
func Simplify(points []r2.Vec, tolerance float64, highQuality bool) []r2.Vec {
	if len(points) <= 2 {
		return append([]r2.Vec(nil), points...)
	}
	sq := tolerance * tolerance
	if !highQuality {
		points = radialDistance(points, sq)
	}
	return douglasPeucker(points, sq)
}

func radialDistance(points []r2.Vec, sqTolerance float64) []r2.Vec {
	prev := points[0]
	out := []r2.Vec{prev}
	var p r2.Vec
	for _, p = range points[1:] {
		if r2.Norm2(r2.Sub(p, prev)) > sqTolerance {
			out = append(out, p)
			prev = p
		}
	}
	if prev != p {
		out = append(out, p)
	}
	return out
}

func douglasPeucker(points []r2.Vec, sqTolerance float64) []r2.Vec {
	end := len(points) - 1
	keep := make([]bool, len(points))
	keep[0], keep[end] = true, true
	markKept(points, 0, end, sqTolerance, keep)
	out := make([]r2.Vec, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func markKept(points []r2.Vec, first, last int, sqTolerance float64, keep []bool) {
	maxSq := sqTolerance
	index := -1
	for i := first + 1; i < last; i++ {
		d := sqSegmentDistance(points[i], points[first], points[last])
		if d > maxSq {
			maxSq = d
			index = i
		}
	}
	if index < 0 {
		return
	}
	keep[index] = true
	if index-first > 1 {
		markKept(points, first, index, sqTolerance, keep)
	}
	if last-index > 1 {
		markKept(points, index, last, sqTolerance, keep)
	}
}

// sqSegmentDistance is the squared distance from p to the segment a-b.
func sqSegmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	if l := r2.Norm2(ab); l != 0 {
		t := r2.Dot(r2.Sub(p, a), ab) / l
		switch {
		case t > 1:
			a = b
		case t > 0:
			a = r2.Add(a, r2.Scale(t, ab))
		}
	}
	return r2.Norm2(r2.Sub(p, a))
}

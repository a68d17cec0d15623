package geo

import (
	"errors"
	"sort"

	"field-visit-service/internal/domain"
)

// ErrDegenerate marks polygon inputs the boolean clipper cannot handle:
// edges touching at endpoints, collinear overlapping edges, rings with
// fewer than 3 distinct vertices, or results that would need holes.
// Callers treat it as a normal outcome and fall back to an approximation.
var ErrDegenerate = errors.New("degenerate polygon operation")

// Intersect returns the area common to two simple rings as zero or more
// closed rings. A nil result with a nil error means the rings are disjoint.
func Intersect(subject, clip []domain.Coordinates) ([][]domain.Coordinates, error) {
	return clipRings(subject, clip, opIntersect)
}

// Difference returns subject minus clip as zero or more closed rings. A
// subtrahend strictly inside the subject would produce a ring with a hole,
// which this kernel does not represent; that case returns ErrDegenerate.
func Difference(subject, clip []domain.Coordinates) ([][]domain.Coordinates, error) {
	return clipRings(subject, clip, opDifference)
}

type clipOp int

const (
	opIntersect clipOp = iota
	opDifference
)

// ghVertex is a node in the doubly linked circular vertex list used by the
// Greiner-Hormann traversal. Intersection nodes appear in both lists and
// point at each other through neighbor.
type ghVertex struct {
	pt         domain.Coordinates
	next, prev *ghVertex
	neighbor   *ghVertex
	intersect  bool
	entry      bool
	visited    bool
	alpha      float64
}

const alphaEps = 1e-9

func clipRings(subject, clip []domain.Coordinates, op clipOp) ([][]domain.Coordinates, error) {
	subj := distinctRing(subject)
	clp := distinctRing(clip)
	if len(subj) < 3 || len(clp) < 3 {
		return nil, ErrDegenerate
	}

	insSubj := make([][]*ghVertex, len(subj))
	insClip := make([][]*ghVertex, len(clp))
	total := 0

	for i := range subj {
		s1, s2 := subj[i], subj[(i+1)%len(subj)]
		for k := range clp {
			c1, c2 := clp[k], clp[(k+1)%len(clp)]

			ua, ub, kind := segmentIntersection(s1, s2, c1, c2)
			switch kind {
			case hitNone:
				continue
			case hitDegenerate:
				return nil, ErrDegenerate
			}

			pt := domain.Coordinates{
				Lon: s1.Lon + ua*(s2.Lon-s1.Lon),
				Lat: s1.Lat + ua*(s2.Lat-s1.Lat),
			}
			vs := &ghVertex{pt: pt, intersect: true, alpha: ua}
			vc := &ghVertex{pt: pt, intersect: true, alpha: ub}
			vs.neighbor, vc.neighbor = vc, vs
			insSubj[i] = append(insSubj[i], vs)
			insClip[k] = append(insClip[k], vc)
			total++
		}
	}

	if total == 0 {
		return clipDisjointOrNested(subj, clp, op)
	}
	if total%2 != 0 {
		return nil, ErrDegenerate
	}

	subjHead, err := linkRing(subj, insSubj)
	if err != nil {
		return nil, err
	}
	clipHead, err := linkRing(clp, insClip)
	if err != nil {
		return nil, err
	}

	// Entry/exit marking. Both operations share the clip-side status; the
	// subject-side status flips for difference (clipping against the
	// complement of the clip ring).
	subjStatus := !Contains(subj[0], clip)
	if op == opDifference {
		subjStatus = !subjStatus
	}
	markEntries(subjHead, subjStatus)
	markEntries(clipHead, !Contains(clp[0], subject))

	return traceRings(subjHead, total)
}

type hitKind int

const (
	hitNone hitKind = iota
	hitProper
	hitDegenerate
)

// segmentIntersection classifies the crossing of segments s1-s2 and c1-c2.
// Only strict interior crossings are proper; endpoint touches and collinear
// overlaps are degenerate for the traversal and reported as such.
func segmentIntersection(s1, s2, c1, c2 domain.Coordinates) (float64, float64, hitKind) {
	d1x, d1y := s2.Lon-s1.Lon, s2.Lat-s1.Lat
	d2x, d2y := c2.Lon-c1.Lon, c2.Lat-c1.Lat

	denom := d1x*d2y - d1y*d2x
	ex, ey := c1.Lon-s1.Lon, c1.Lat-s1.Lat

	if denom == 0 {
		// Parallel. Collinear and overlapping in projection is degenerate;
		// otherwise there is no crossing.
		if ex*d1y-ey*d1x == 0 && collinearOverlap(s1, s2, c1, c2) {
			return 0, 0, hitDegenerate
		}
		return 0, 0, hitNone
	}

	ua := (ex*d2y - ey*d2x) / denom
	ub := (ex*d1y - ey*d1x) / denom

	if ua < -alphaEps || ua > 1+alphaEps || ub < -alphaEps || ub > 1+alphaEps {
		return 0, 0, hitNone
	}
	if ua < alphaEps || ua > 1-alphaEps || ub < alphaEps || ub > 1-alphaEps {
		return 0, 0, hitDegenerate
	}
	return ua, ub, hitProper
}

func collinearOverlap(s1, s2, c1, c2 domain.Coordinates) bool {
	minMax := func(a, b float64) (float64, float64) {
		if a > b {
			return b, a
		}
		return a, b
	}
	sMinX, sMaxX := minMax(s1.Lon, s2.Lon)
	cMinX, cMaxX := minMax(c1.Lon, c2.Lon)
	sMinY, sMaxY := minMax(s1.Lat, s2.Lat)
	cMinY, cMaxY := minMax(c1.Lat, c2.Lat)
	return sMinX <= cMaxX && cMinX <= sMaxX && sMinY <= cMaxY && cMinY <= sMaxY
}

// distinctRing drops the closing vertex and consecutive duplicates.
func distinctRing(ring []domain.Coordinates) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// linkRing builds the circular list for one ring, splicing each edge's
// intersection nodes in alpha order. Two crossings at the same alpha on one
// edge cannot be ordered and are degenerate.
func linkRing(ring []domain.Coordinates, ins [][]*ghVertex) (*ghVertex, error) {
	var head, tail *ghVertex

	appendNode := func(v *ghVertex) {
		if head == nil {
			head = v
			tail = v
			return
		}
		tail.next = v
		v.prev = tail
		tail = v
	}

	for i, p := range ring {
		appendNode(&ghVertex{pt: p})

		edge := ins[i]
		sort.Slice(edge, func(a, b int) bool { return edge[a].alpha < edge[b].alpha })
		for k, v := range edge {
			if k > 0 && v.alpha-edge[k-1].alpha < alphaEps {
				return nil, ErrDegenerate
			}
			appendNode(v)
		}
	}

	tail.next = head
	head.prev = tail
	return head, nil
}

// markEntries walks one list, tagging each intersection node as an entry or
// exit into the other polygon, alternating from the initial status.
func markEntries(head *ghVertex, entry bool) {
	for v := head; ; v = v.next {
		if v.intersect {
			v.entry = entry
			entry = !entry
		}
		if v.next == head {
			return
		}
	}
}

// traceRings walks unvisited intersections, following next pointers through
// entries and prev pointers through exits, switching lists at every
// intersection node, until each loop closes.
func traceRings(subjHead *ghVertex, totalIntersections int) ([][]domain.Coordinates, error) {
	var out [][]domain.Coordinates

	// Each intersection node is consumed at most once per list; anything
	// beyond that bound means the traversal is stuck on bad topology.
	budget := 4 * totalIntersections

	for start := firstUnvisited(subjHead); start != nil; start = firstUnvisited(subjHead) {
		ring := []domain.Coordinates{start.pt}
		cur := start

		for !cur.visited {
			if budget--; budget < 0 {
				return nil, ErrDegenerate
			}
			cur.visited = true
			cur.neighbor.visited = true

			if cur.entry {
				for {
					cur = cur.next
					ring = append(ring, cur.pt)
					if cur.intersect {
						break
					}
				}
			} else {
				for {
					cur = cur.prev
					ring = append(ring, cur.pt)
					if cur.intersect {
						break
					}
				}
			}
			cur = cur.neighbor
		}

		if ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		if len(ring) >= 4 {
			out = append(out, ring)
		}
	}

	return out, nil
}

func firstUnvisited(head *ghVertex) *ghVertex {
	for v := head; ; v = v.next {
		if v.intersect && !v.visited {
			return v
		}
		if v.next == head {
			return nil
		}
	}
}

// clipDisjointOrNested handles rings whose edges never cross: one ring is
// fully inside the other, or they are disjoint.
func clipDisjointOrNested(subj, clp []domain.Coordinates, op clipOp) ([][]domain.Coordinates, error) {
	subjInClip := Contains(subj[0], append(clp, clp[0]))
	clipInSubj := Contains(clp[0], append(subj, subj[0]))

	switch op {
	case opIntersect:
		if subjInClip {
			return [][]domain.Coordinates{closeRing(subj)}, nil
		}
		if clipInSubj {
			return [][]domain.Coordinates{closeRing(clp)}, nil
		}
		return nil, nil
	default: // opDifference
		if subjInClip {
			return nil, nil
		}
		if clipInSubj {
			// subject minus an island inside it needs a hole.
			return nil, ErrDegenerate
		}
		return [][]domain.Coordinates{closeRing(subj)}, nil
	}
}

func closeRing(ring []domain.Coordinates) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(ring)+1)
	out = append(out, ring...)
	out = append(out, ring[0])
	return out
}

package collision

import (
	"github.com/dhconnelly/rtreego"

	"github.com/dmaher42/athens/pkg/geo"
)

// Layer names a polygon collection of the model.
type Layer string

const (
	LayerCityWall   Layer = "city_wall"
	LayerLongWall   Layer = "long_wall"
	LayerAdditional Layer = "additional"
	LayerAcropolis  Layer = "acropolis"
)

// boundsPad widens indexed boxes so that zero-width boxes stay valid rtree
// rectangles and boundary points are never culled.
const boundsPad = 1e-6

// queryTol is the half-extent of the rectangle used for a point query.
const queryTol = 1e-9

// indexed is a blocker polygon stored in the rtree.
type indexed struct {
	poly  geo.Polygon
	layer Layer
	order int
	rect  rtreego.Rect
}

func (i *indexed) Bounds() rtreego.Rect { return i.rect }

// blockerIndex is a read-only rtree over the hard-blocker polygons.
// Polygons whose box the rtree rejects are kept in loose and scanned
// linearly.
type blockerIndex struct {
	tree  *rtreego.Rtree
	size  int
	loose []*indexed
}

type layered struct {
	layer Layer
	polys []geo.Polygon
}

var newRect = rtreego.NewRect

func newBlockerIndex(layers ...layered) *blockerIndex {
	var (
		objs  []rtreego.Spatial
		loose []*indexed
	)
	order := 0
	for _, l := range layers {
		for _, p := range l.polys {
			it := &indexed{poly: p, layer: l.layer, order: order}
			order++
			b := p.BoundingBox()
			rect, err := newRect(
				rtreego.Point{b.MinX - boundsPad, b.MinY - boundsPad},
				[]float64{b.Width() + 2*boundsPad, b.Height() + 2*boundsPad},
			)
			if err != nil {
				loose = append(loose, it)
				continue
			}
			it.rect = rect
			objs = append(objs, it)
		}
	}
	return &blockerIndex{tree: rtreego.NewTree(2, 25, 50, objs...), size: len(objs), loose: loose}
}

// hit returns the layer of the first-inserted polygon containing pt.
func (ix *blockerIndex) hit(pt geo.Point) (Layer, bool) {
	if ix == nil {
		return "", false
	}
	var best *indexed
	consider := func(it *indexed) {
		if best != nil && it.order > best.order {
			return
		}
		if it.poly.Contains(pt) {
			best = it
		}
	}
	if ix.size > 0 {
		query := rtreego.Point{pt.X, pt.Y}.ToRect(queryTol)
		for _, s := range ix.tree.SearchIntersect(query) {
			consider(s.(*indexed))
		}
	}
	for _, it := range ix.loose {
		consider(it)
	}
	if best == nil {
		return "", false
	}
	return best.layer, true
}

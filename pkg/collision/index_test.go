package collision

import (
	"errors"
	"testing"

	"github.com/dhconnelly/rtreego"
	"github.com/stretchr/testify/assert"

	"github.com/dmaher42/athens/pkg/geo"
)

func square(x0, y0, size float64) geo.Polygon {
	return geo.MustPolygon(geo.Pt(x0, y0), geo.Pt(x0+size, y0), geo.Pt(x0+size, y0+size), geo.Pt(x0, y0+size))
}

func TestBlockerIndexFirstInsertedWins(t *testing.T) {
	ix := newBlockerIndex(
		layered{layer: LayerCityWall, polys: []geo.Polygon{square(0, 0, 10)}},
		layered{layer: LayerAdditional, polys: []geo.Polygon{square(5, 5, 10)}},
	)
	layer, ok := ix.hit(geo.Pt(7, 7))
	assert.True(t, ok)
	assert.Equal(t, LayerCityWall, layer)

	layer, ok = ix.hit(geo.Pt(12, 12))
	assert.True(t, ok)
	assert.Equal(t, LayerAdditional, layer)

	_, ok = ix.hit(geo.Pt(50, 50))
	assert.False(t, ok)
}

func TestBlockerIndexKeepsRejectedBoxes(t *testing.T) {
	orig := newRect
	t.Cleanup(func() { newRect = orig })
	calls := 0
	newRect = func(p rtreego.Point, lengths []float64) (rtreego.Rect, error) {
		calls++
		if calls == 1 {
			return rtreego.Rect{}, errors.New("rejected")
		}
		return orig(p, lengths)
	}

	ix := newBlockerIndex(
		layered{layer: LayerLongWall, polys: []geo.Polygon{square(0, 0, 10)}},
		layered{layer: LayerAdditional, polys: []geo.Polygon{square(5, 5, 10), square(100, 100, 10)}},
	)
	assert.Len(t, ix.loose, 1)
	assert.Equal(t, 2, ix.size)

	layer, ok := ix.hit(geo.Pt(1, 1))
	assert.True(t, ok, "a polygon the rtree rejected must still block")
	assert.Equal(t, LayerLongWall, layer)

	layer, ok = ix.hit(geo.Pt(7, 7))
	assert.True(t, ok)
	assert.Equal(t, LayerLongWall, layer)

	layer, ok = ix.hit(geo.Pt(105, 105))
	assert.True(t, ok)
	assert.Equal(t, LayerAdditional, layer)
}

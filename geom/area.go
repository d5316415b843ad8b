package geom

// VerticalParallelogram returns the closed path of width w whose vertical
// sides are centered on top and bottom. Used to shape stems along their median.
func VerticalParallelogram(top, bottom PointF, w float64) *GeoPath {
	dx := w / 2

	return PolygonPath(
		PointF{X: top.X - dx, Y: top.Y},
		PointF{X: top.X + dx, Y: top.Y},
		PointF{X: bottom.X + dx, Y: bottom.Y},
		PointF{X: bottom.X - dx, Y: bottom.Y},
	)
}

// HorizontalParallelogram returns the closed path of height h whose
// horizontal sides are centered on left and right. Used for beams.
func HorizontalParallelogram(left, right PointF, h float64) *GeoPath {
	dy := h / 2

	return PolygonPath(
		PointF{X: left.X, Y: left.Y - dy},
		PointF{X: right.X, Y: right.Y - dy},
		PointF{X: right.X, Y: right.Y + dy},
		PointF{X: left.X, Y: left.Y + dy},
	)
}

// StemBounds returns the pixel bounds of the vertical parallelogram built on
// median between ordinates yTop and yBottom.
func StemBounds(median Segment, yTop, yBottom, w float64) (Rect, error) {
	xt, err := median.XAtY(yTop)
	if err != nil {
		return Rect{}, err
	}
	xb, err := median.XAtY(yBottom)
	if err != nil {
		return Rect{}, err
	}
	path := VerticalParallelogram(PointF{X: xt, Y: yTop}, PointF{X: xb, Y: yBottom}, w)

	return path.Bounds().Enclosing(), nil
}

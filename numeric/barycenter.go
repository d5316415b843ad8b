package numeric

// Barycenter accumulates weighted 2D points.
// The zero value is an empty barycenter ready for use.
type Barycenter struct {
	weight float64
	xx     float64
	yy     float64
}

// Include adds point (x, y) with the given weight.
func (b *Barycenter) Include(weight, x, y float64) {
	b.weight += weight
	b.xx += weight * x
	b.yy += weight * y
}

// IncludeAll merges another barycenter into b.
func (b *Barycenter) IncludeAll(o Barycenter) {
	b.weight += o.weight
	b.xx += o.xx
	b.yy += o.yy
}

// Weight returns the accumulated weight.
func (b *Barycenter) Weight() float64 { return b.weight }

// X returns the weighted abscissa, 0 when empty.
func (b *Barycenter) X() float64 {
	if b.weight == 0 {
		return 0
	}

	return b.xx / b.weight
}

// Y returns the weighted ordinate, 0 when empty.
func (b *Barycenter) Y() float64 {
	if b.weight == 0 {
		return 0
	}

	return b.yy / b.weight
}

// Package geom holds the integer and floating-point geometry used across the
// editor: points, rectangles, least-squares lines, paths made of lines and
// Bézier curves, and the few area builders needed to shape stems and barlines.
//
// Integer types (Point, Rect) address image pixels; float types (PointF,
// RectF, BasicLine, GeoPath) carry sub-pixel geometry.
package geom

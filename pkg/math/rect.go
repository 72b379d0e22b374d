package math

// Rect is an axis-aligned rectangle in normalized [0,1] atlas space.
// X,Y is the top-left origin; W,H the extent.
type Rect struct {
	X, Y, W, H float32
}

// Origin returns the top-left corner.
func (r Rect) Origin() Vec2 {
	return Vec2{r.X, r.Y}
}

// Size returns the extent as a vector.
func (r Rect) Size() Vec2 {
	return Vec2{r.W, r.H}
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside the rectangle (inclusive of the
// top-left edge, exclusive of the bottom-right).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and other overlap with positive area.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W && other.X < r.X+r.W &&
		r.Y < other.Y+other.H && other.Y < r.Y+r.H
}

// Transform maps a coordinate from [0,1] local space into the rectangle:
// origin + p * size.
func (r Rect) Transform(p Vec2) Vec2 {
	return Vec2{r.X + p.X*r.W, r.Y + p.Y*r.H}
}

// Area returns W*H.
func (r Rect) Area() float32 {
	return r.W * r.H
}

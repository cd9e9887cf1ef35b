package inp

// Bounds is an axis-aligned box in model coordinates.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

func pointBounds(x, y, z float64) Bounds {
	return Bounds{MinX: x, MaxX: x, MinY: y, MaxY: y, MinZ: z, MaxZ: z}
}

// Contains returns true if the point (x, y, z) is within the bounds.
func (b Bounds) Contains(x, y, z float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY &&
		z >= b.MinZ && z <= b.MaxZ
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX || other.MinX > b.MaxX ||
		other.MaxY < b.MinY || other.MinY > b.MaxY ||
		other.MaxZ < b.MinZ || other.MinZ > b.MaxZ)
}

// Expand returns a new Bounds expanded by margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin, MaxX: b.MaxX + margin,
		MinY: b.MinY - margin, MaxY: b.MaxY + margin,
		MinZ: b.MinZ - margin, MaxZ: b.MaxZ + margin,
	}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, other.MinX), MaxX: max(b.MaxX, other.MaxX),
		MinY: min(b.MinY, other.MinY), MaxY: max(b.MaxY, other.MaxY),
		MinZ: min(b.MinZ, other.MinZ), MaxZ: max(b.MaxZ, other.MaxZ),
	}
}

// Size returns the edge lengths along x, y and z.
func (b Bounds) Size() (dx, dy, dz float64) {
	return b.MaxX - b.MinX, b.MaxY - b.MinY, b.MaxZ - b.MinZ
}

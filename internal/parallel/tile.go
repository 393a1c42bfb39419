// Package parallel provides the tile partitioning and worker pool used by
// the CPU escape-time renderer.
//
// An image is split into square tiles that are evaluated independently.
// Edge tiles are clipped to the image bounds when the image size is not a
// multiple of the tile size, mirroring how the GPU compute stage ceiling-
// divides its workgroup dispatch.
//
// Thread safety: Tile values are immutable; WorkerPool is safe for
// concurrent use.
package parallel

// DefaultTileSize is the tile edge used by the CPU renderer.
// 64x64 RGBA pixels is 16KB, which fits L1 cache.
const DefaultTileSize = 64

// Tile is a rectangular block of pixels processed as one unit of work.
type Tile struct {
	// X0, Y0 is the top-left pixel of the tile.
	X0, Y0 int

	// Width and Height are the clipped tile dimensions. They are smaller
	// than the tile size only for the last column or row.
	Width, Height int
}

// X1 returns the exclusive right edge.
func (t Tile) X1() int { return t.X0 + t.Width }

// Y1 returns the exclusive bottom edge.
func (t Tile) Y1() int { return t.Y0 + t.Height }

// Pixels returns the number of pixels in the tile.
func (t Tile) Pixels() int { return t.Width * t.Height }

// TileCount returns how many tiles of the given size cover n pixels.
func TileCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// SplitTiles covers a width x height image with tiles of the given edge
// length, row-major. Tiles in the last column and row are clipped so no
// tile extends past the image. Returns nil for empty images.
func SplitTiles(width, height, size int) []Tile {
	if size <= 0 {
		size = DefaultTileSize
	}
	cols, rows := TileCount(width, size), TileCount(height, size)
	if cols == 0 || rows == 0 {
		return nil
	}
	tiles := make([]Tile, 0, cols*rows)
	for ty := range rows {
		y0 := ty * size
		h := min(size, height-y0)
		for tx := range cols {
			x0 := tx * size
			tiles = append(tiles, Tile{X0: x0, Y0: y0, Width: min(size, width-x0), Height: h})
		}
	}
	return tiles
}

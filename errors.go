package fractal

import "errors"

var (
	// ErrPrecisionLimitReached is returned when a zoom-in would shrink the
	// visible extent below the configured precision floor, or a zoom-out
	// would grow it past MaxExtent. The view is left unchanged; the
	// condition is recoverable.
	ErrPrecisionLimitReached = errors.New("fractal: precision limit reached")

	// ErrResourceAllocationFailed is returned when a GPU object could not be
	// created. The previously installed resources stay valid.
	ErrResourceAllocationFailed = errors.New("fractal: GPU resource allocation failed")

	// ErrDeviceLost is returned when the GPU device stops responding. It is
	// fatal to the session: resources must be released and no more work issued.
	ErrDeviceLost = errors.New("fractal: GPU device lost")

	// ErrSurfaceAcquireFailed is returned when no presentable image was
	// available for a frame. The frame is retried on the next redraw.
	ErrSurfaceAcquireFailed = errors.New("fractal: surface image not available")

	// ErrInvalidSize is returned for zero or negative image dimensions.
	ErrInvalidSize = errors.New("fractal: invalid size")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("fractal: invalid config")

	// ErrUnsupportedFormat is returned by Save for unknown file extensions.
	ErrUnsupportedFormat = errors.New("fractal: unsupported image format")
)

// IsFatal reports whether err ends the interactive session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceLost)
}

//go:build !amd64 && !arm64

package hwy

func init() {
	// Other architectures run the portable lanes in scalar mode.
	setScalarMode()
}

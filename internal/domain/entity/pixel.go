package entity

import "fmt"

// PixelFormat 32-битный формат входного буфера модели.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatARGB32              // A, R, G, B
	PixelFormatBGRA32              // B, G, R, A (порядок OpenCV)
	PixelFormatRGBA32              // R, G, B, A
)

// String возвращает имя формата.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatARGB32:
		return "ARGB32"
	case PixelFormatBGRA32:
		return "BGRA32"
	case PixelFormatRGBA32:
		return "RGBA32"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// PixelBuffer растровый буфер фиксированного размера для инференса.
type PixelBuffer struct {
	Width       int
	Height      int
	Format      PixelFormat
	BytesPerRow int
	Data        []byte
}

// Offset возвращает смещение первого байта пикселя (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return y*b.BytesPerRow + x*4
}

package audio

import (
	"unsafe"
)

// BytesOfFloat32s reinterprets a float32 slice as its raw little-endian
// bytes (no copying).
func BytesOfFloat32s(buf []float32) []byte {
	if len(buf) == 0 {
		return nil
	}
	ptr := unsafe.SliceData(buf)
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), len(buf)*int(unsafe.Sizeof(buf[0])))
}

// Float32sOfBytes reinterprets raw bytes as a float32 slice (no copying).
// len(buf) must be a multiple of 4.
func Float32sOfBytes(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	ptr := unsafe.SliceData(buf)
	return unsafe.Slice((*float32)(unsafe.Pointer(ptr)), len(buf)/4)
}

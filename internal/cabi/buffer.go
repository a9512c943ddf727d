package cabi

// WriteCString copies s into dst followed by a NUL terminator. When s does not
// fit, it is truncated so the terminator lands on the last byte of dst. It
// never writes past len(dst) and returns the number of bytes of s written.
// An empty dst is left untouched.
func WriteCString(dst []byte, s string) int {
	if len(dst) == 0 {
		return 0
	}
	n := copy(dst[:len(dst)-1], s)
	dst[n] = 0
	return n
}

// Cap converts a C size to a Go length. Sizes that overflow int are reported
// as -1 so callers reject them as invalid.
func Cap(size uint64) int {
	if size > uint64(maxInt) {
		return -1
	}
	return int(size)
}

const maxInt = int(^uint(0) >> 1)

package gate

import "github.com/hhcho/sharecore/share"

func shapeEqual(a, b share.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func minBits(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ChannelsEqualLen reports whether every channel has the same length and
// returns that length. An empty channel set has length 0.
func ChannelsEqualLen(channels [][]float64) (int, bool) {
	if len(channels) == 0 {
		return 0, true
	}
	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != n {
			return 0, false
		}
	}
	return n, true
}

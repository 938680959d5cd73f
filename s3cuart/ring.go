// s3cuart/ring.go

package s3cuart

// ring is the receive FIFO of the simulated line. When full it drops the
// oldest byte, the way an unread receive buffer is overrun.
type ring struct {
	buf        [512]byte
	head, tail int
	dropped    int
}

func (r *ring) len() int {
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return len(r.buf) - r.tail + r.head
}

func (r *ring) put(b byte) {
	next := (r.head + 1) % len(r.buf)
	if next == r.tail {
		// drop oldest
		r.tail = (r.tail + 1) % len(r.buf)
		r.dropped++
	}
	r.buf[r.head] = b
	r.head = next
}

func (r *ring) get() (byte, bool) {
	if r.len() == 0 {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return b, true
}

func (r *ring) reset() {
	r.head, r.tail, r.dropped = 0, 0, 0
}

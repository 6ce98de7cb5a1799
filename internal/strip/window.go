package strip

// absent fills window slots that hold no character yet, and slots for input
// bytes that are not valid UTF-8. No marker rune can equal it.
const absent rune = -1

// window is a fixed-size ring of the most recently consumed characters.
type window struct {
	buf  []rune
	next int // slot of the oldest entry, overwritten by the next push
}

func newWindow(width int) *window {
	w := &window{buf: make([]rune, width)}
	for i := range w.buf {
		w.buf[i] = absent
	}
	return w
}

func (w *window) push(r rune) {
	if len(w.buf) == 0 {
		return
	}
	w.buf[w.next] = r
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
	}
}

// endsWith reports whether the newest len(m) entries spell m.
func (w *window) endsWith(m []rune) bool {
	if len(m) == 0 || len(m) > len(w.buf) {
		return false
	}
	idx := w.next
	for i := len(m) - 1; i >= 0; i-- {
		idx--
		if idx < 0 {
			idx = len(w.buf) - 1
		}
		if w.buf[idx] != m[i] {
			return false
		}
	}
	return true
}

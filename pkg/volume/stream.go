package volume

import (
	"bytes"
	"fmt"
)

// Reader reads a snapshot of the file content.
type Reader struct {
	*bytes.Reader
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	return nil
}

// Writer buffers file content and commits it on Close.
type Writer struct {
	f      *File
	buf    []byte
	pos    int
	closed bool
}

// Write implements io.Writer. Data is written at the current position
// overwriting existing bytes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	end := w.pos + len(p)
	if end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	copy(w.buf[w.pos:], p)
	w.pos = end

	return len(p), nil
}

// WriteString implements io.StringWriter.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Truncate changes the content size. The position is moved to the new
// end if it is beyond it.
func (w *Writer) Truncate(size int) error {
	if w.closed {
		return ErrClosed
	}
	if size < 0 {
		return fmt.Errorf("negative size %d", size)
	}

	if size <= len(w.buf) {
		w.buf = w.buf[:size]
	} else {
		w.buf = append(w.buf, make([]byte, size-len(w.buf))...)
	}
	w.pos = min(w.pos, size)
	return nil
}

// Close commits the content. Closing twice returns ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	if err := w.f.v.idx.WritePayload(w.f.path, w.buf); err != nil {
		return err
	}
	return w.f.refresh()
}

package iolib

import "io"

// WriteFull writes buf to w until every byte is accepted.
// A writer which makes no progress without an error yields [io.ErrShortWrite].
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

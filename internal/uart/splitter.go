package uart

// maxLine caps a buffered line; bytes beyond it are discarded until the
// next terminator.
const maxLine = 256

// splitter assembles lines from arbitrary read chunks. CR and LF both end a
// line; empty lines are skipped.
type splitter struct {
	buf []byte
}

func (s *splitter) feed(p []byte) []string {
	var lines []string
	for _, b := range p {
		if b == '\r' || b == '\n' {
			if len(s.buf) > 0 {
				lines = append(lines, string(s.buf))
				s.buf = s.buf[:0]
			}
			continue
		}
		if len(s.buf) < maxLine {
			s.buf = append(s.buf, b)
		}
	}
	return lines
}

func (s *splitter) flush() (string, bool) {
	if len(s.buf) == 0 {
		return "", false
	}
	line := string(s.buf)
	s.buf = s.buf[:0]
	return line, true
}

package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	DEL  byte = 0x7F
)

var (
	OWS  = []byte{SP, HTAB}
	CRLF = []byte{CR, LF}

	// HeaderTerminator ends the header block: the CRLF of the last field line
	// followed by an empty line.
	HeaderTerminator = []byte{CR, LF, CR, LF}
)

func IsWhitespace(r rune) bool {
	for _, ws := range OWS {
		if r == rune(ws) {
			return true
		}
	}
	return false
}

// IsCTL reports whether c is a control character (including DEL).
// Reference: https://datatracker.ietf.org/doc/html/rfc1945#section-2.2
func IsCTL(c byte) bool { return c < SP || c == DEL }

func IsAlpha(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
func IsDigit(r rune) bool { return '0' <= r && r <= '9' }

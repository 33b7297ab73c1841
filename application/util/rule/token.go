package rule

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if IsAlpha(c) || IsDigit(c) {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}

// IsValidTarget reports whether s can be placed on a request line as is.
// It must not be empty and must not contain whitespace or control characters,
// otherwise the request line would be split or terminated early.
func IsValidTarget(s string) bool {
	if len(s) == 0 {
		return false
	}
	for idx := 0; idx < len(s); idx++ {
		if c := s[idx]; c == SP || IsCTL(c) {
			return false
		}
	}
	return true
}

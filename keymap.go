package main

// keyFor maps a keyboard character to a CHIP-8 key.
// The digits and the letters a-f (in either case) name
// the sixteen keys by their hex value.
func keyFor(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 0xa, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 0xa, true
	}
	return 0, false
}

// Package osc implements a realtime-safe codec, pattern matcher, and
// dispatcher for OpenSoundControl (OSC) messages and bundles. Buffers are
// always caller-supplied and fixed size. The encoders (Message, Bundle), the
// window-returning accessors, Match and Dispatch never allocate, lock, or
// block once a Ports graph has been constructed, so they are safe to call
// from an audio callback. The checked and validating helpers, Address,
// Timetag.ToByteArray and DispatchScheduled are for non-realtime callers.
package osc

// Match reports whether address satisfies pattern, using the OSC 1.0
// address-pattern grammar: '?' matches any single non-'/' character, '*'
// matches a run of zero or more non-'/' characters, '[abc]'/'[a-z]' are
// character classes (a leading '!' negates), and '{foo,bar}' is alternation
// between literal strings. A literal '/' in pattern matches only a literal
// '/' in address; wildcards never cross it.
//
// address is a []byte, not a string, specifically so the dispatcher can
// pass it a window straight into the original message buffer: converting
// that window to a string first (as Dispatch used to) is a copying
// allocation on every call, exactly what the audio thread must not do.
// pattern stays a string because every Port.Pattern is a static program-
// scope literal; nothing is ever converted between the two, only indexed
// and sliced, so Match itself never allocates.
//
// Match replaces the teacher's per-call regexp.MustCompile translation with
// a direct matcher: compiling a fresh regular expression on every dispatch
// is unbounded, allocating work, which is exactly what the audio thread
// must not do.
func Match(pattern string, address []byte) bool {
	return matchSeg(pattern, address)
}

func matchSeg(pat string, str []byte) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			for len(pat) > 1 && pat[1] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 1 {
				for i := 0; i < len(str); i++ {
					if str[i] == '/' {
						return false
					}
				}
				return true
			}
			rest := pat[1:]
			for i := 0; i <= len(str); i++ {
				if matchSeg(rest, str[i:]) {
					return true
				}
				if i < len(str) && str[i] == '/' {
					return false
				}
			}
			return false

		case '?':
			if len(str) == 0 || str[0] == '/' {
				return false
			}
			pat, str = pat[1:], str[1:]

		case '[':
			end := findClose(pat, ']')
			if end < 0 || len(str) == 0 || str[0] == '/' {
				return false
			}
			if !matchClass(pat[1:end], str[0]) {
				return false
			}
			pat, str = pat[end+1:], str[1:]

		case '{':
			end := findClose(pat, '}')
			if end < 0 {
				return false
			}
			return matchAlternation(pat[1:end], pat[end+1:], str)

		default:
			if len(str) == 0 || str[0] != pat[0] {
				return false
			}
			pat, str = pat[1:], str[1:]
		}
	}
	return len(str) == 0
}

// hasStringPrefix reports whether b starts with s, comparing byte by byte
// so that s (a substring of a Port's static Pattern) never needs to be
// converted to a []byte to be compared against b.
func hasStringPrefix(b []byte, s string) bool {
	if len(b) < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}

// matchAlternation tries each comma-separated literal in body as a prefix
// of str, continuing the match of rest against whatever remains. It scans
// body in place rather than splitting it into a slice, so it allocates
// nothing.
func matchAlternation(body, rest string, str []byte) bool {
	start := 0
	for i := 0; i <= len(body); i++ {
		if i == len(body) || body[i] == ',' {
			alt := body[start:i]
			if hasStringPrefix(str, alt) && matchSeg(rest, str[len(alt):]) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func findClose(pat string, closing byte) int {
	for i := 1; i < len(pat); i++ {
		if pat[i] == closing {
			return i
		}
	}
	return -1
}

// matchClass reports whether c belongs to the character class described by
// body, the text strictly between '[' and ']'. A leading '!' in body
// negates the class.
func matchClass(body string, c byte) bool {
	neg := false
	if len(body) > 0 && body[0] == '!' {
		neg = true
		body = body[1:]
	}
	matched := false
	for i := 0; i < len(body); {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if body[i] == c {
			matched = true
		}
		i++
	}
	if neg {
		return !matched
	}
	return matched
}

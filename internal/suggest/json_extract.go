package suggest

// findArrayCandidates scans a completion reply for top-level JSON array
// candidates. Model replies routinely wrap the payload in prose or
// markdown fences, so the parser needs exact array boundaries rather
// than a regex guess.
//
// A byte-level state machine tracks bracket depth and skips string
// contents, including escapes. Iterating bytes is safe for the ASCII
// delimiters involved because UTF-8 never embeds ASCII inside a
// multi-byte sequence.
func findArrayCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}

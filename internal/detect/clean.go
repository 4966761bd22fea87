package detect

import "strings"

// textMarkers are label words that survive cleaning when glued to an
// address ("CA: <addr>", "Contract<addr>"). Checked case-insensitively as
// prefixes of the cleaned candidate.
var textMarkers = []string{"contract", "ca", "address", "token", "pair", "mint", "swap", "buy"}

// addressAlphabet is the free-text cleaning filter: hex digits for EVM,
// base58-ish letters for Solana/TRON, plus the x of the 0x prefix. It
// drops i/I/o/O even though base58 allows lowercase i and o; link-captured
// candidates bypass it for that reason.
const addressAlphabet = "0123456789abcdefABCDEFxXTtGgHhJjKkLlMmNnPpQqRrSsUuVvWwYyZz"

// CleanCandidate strips formatting noise from a raw candidate substring and
// returns a pure address candidate. It never fails: garbage in produces an
// empty or too-short string, which callers treat as no candidate.
func CleanCandidate(raw string) string {
	// Pass 1: drop everything that is not ASCII alphanumeric. Emoji,
	// separators and zero-width junk all disappear here.
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// Pass 2: repair a 0x prefix that cleaning may have mangled. Only
	// applies when the raw text started with a digit-0 and an x survived
	// near the front.
	if strings.HasPrefix(strings.TrimSpace(raw), "0") {
		head := cleaned
		if len(head) > 10 {
			head = head[:10]
		}
		if xPos := strings.Index(head, "x"); xPos >= 0 {
			switch {
			case xPos > 0 && cleaned[xPos-1] == '0':
				// prefix intact
			case xPos == 0:
				cleaned = "0" + cleaned
			default:
				// 0 and x separated by noise: rebuild the prefix.
				rest := strings.Replace(cleaned, "0", "", 1)
				rest = strings.Replace(rest, "x", "", 1)
				cleaned = "0x" + rest
			}
		}
	}

	// Pass 3: strip one leading label word glued to the address.
	lower := strings.ToLower(cleaned)
	for _, marker := range textMarkers {
		if strings.HasPrefix(lower, marker) {
			cleaned = cleaned[len(marker):]
			break
		}
	}

	// Pass 4: final restriction to the supported address alphabet.
	var final strings.Builder
	final.Grow(len(cleaned))
	for _, r := range cleaned {
		if strings.ContainsRune(addressAlphabet, r) {
			final.WriteRune(r)
		}
	}
	return final.String()
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

package detect

import (
	"strings"

	"chainwatch/internal/domain"
)

// Detector extracts contract addresses from raw message text. It holds no
// mutable state; the pattern library is package-level and immutable, so a
// single Detector may be shared by any number of goroutines.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// separators used for word-boundary candidate extraction.
const wordSeparators = " \n\r\t/\\|:,;\"'()[]{}"

// Detect runs the detection strategies in strict precedence order and
// returns the first valid (chain, address) pair. Link extraction runs
// first because aggregator URLs carry the highest-confidence chain signal;
// free-text extraction only runs when no link yields a valid address.
// Absence of a match is the only failure mode and is reported via ok=false.
func (d *Detector) Detect(text string) (domain.Detection, bool) {
	if text == "" {
		return domain.Detection{}, false
	}

	if det, ok := d.extractFromLinks(text); ok {
		return det, true
	}
	return d.extractFromText(text)
}

// extractFromLinks scans the text against every aggregator link pattern in
// registration order and returns the first candidate that validates.
// Link captures are already constrained to alphanumerics by the patterns,
// so they are only whitespace-trimmed; the aggressive cleaner would strip
// valid base58 characters and belongs to the free-text pass alone.
func (d *Detector) extractFromLinks(text string) (domain.Detection, bool) {
	for _, lp := range linkPatterns {
		matches := lp.re.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			switch lp.kind {
			case captureChainAddress:
				chain, known := chainAliases[strings.ToLower(m[1])]
				if !known {
					continue
				}
				cleaned := strings.TrimSpace(m[2])
				if matchesShape(chain, cleaned) && ValidAddress(chain, cleaned) {
					return domain.Detection{Chain: chain, Address: cleaned}, true
				}
			case captureAddress:
				cleaned := strings.TrimSpace(m[1])
				if lp.chain != "" {
					// Chain implied by the pattern's own identity.
					if matchesShape(lp.chain, cleaned) && ValidAddress(lp.chain, cleaned) {
						return domain.Detection{Chain: lp.chain, Address: cleaned}, true
					}
					continue
				}
				// No chain identity: classify with the full message as
				// context.
				if det, ok := classify(cleaned, text); ok {
					return det, true
				}
			}
		}
	}
	return domain.Detection{}, false
}

// extractFromText generates candidates from the normalized message body
// through three independent passes, then classifies each unique cleaned
// candidate in generation order.
func (d *Detector) extractFromText(text string) (domain.Detection, bool) {
	normalized := normalizeText(text)

	var candidates []string

	// Pass 1: direct format-pattern matches.
	candidates = append(candidates, formatCandidates(normalized)...)

	// Pass 2: word-boundary split, keeping anything address-length.
	for _, word := range strings.FieldsFunc(normalized, isSeparator) {
		if len(word) >= 32 {
			candidates = append(candidates, word)
		}
	}

	// Pass 3: path-style segments from the raw (non-normalized) text.
	for _, m := range pathSegmentRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	// Clean, dedupe, classify. The original full text is the
	// disambiguation context for every candidate.
	seen := make(map[string]struct{})
	for _, raw := range candidates {
		cleaned := CleanCandidate(raw)
		if len(cleaned) < 32 {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}

		if det, ok := classify(cleaned, text); ok {
			return det, true
		}
	}
	return domain.Detection{}, false
}

// classify resolves the format family of a cleaned candidate, resolves the
// chain from context, and validates. EVM-shaped addresses with no EVM
// keyword in context default to ethereum; that fallback is policy, not an
// accident.
func classify(address, context string) (domain.Detection, bool) {
	// TRON: T + 33 chars, fixed length.
	if len(address) == 34 && tronRe.MatchString(address) {
		if ValidAddress(domain.ChainTron, address) {
			return domain.Detection{Chain: domain.ChainTron, Address: address}, true
		}
	}

	// EVM: 0x + 40 hex. The shape is shared by bsc/ethereum/base/arbitrum,
	// so the specific chain comes from context keywords.
	if len(address) == 42 && evmRe.MatchString(address) {
		chain := domain.ChainEthereum
		if hint, ok := ChainFromContext(context); ok && hint.IsEVM() {
			chain = hint
		}
		if ValidAddress(chain, address) {
			return domain.Detection{Chain: chain, Address: address}, true
		}
	}

	// Solana: 32-44 base58-length chars, no 0x or T prefix. Alphabet is
	// deliberately not re-checked here; downstream lookup verifies the
	// address exists.
	if len(address) >= 32 && len(address) <= 44 &&
		!strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "T") {
		if ValidAddress(domain.ChainSolana, address) {
			return domain.Detection{Chain: domain.ChainSolana, Address: address}, true
		}
	}

	return domain.Detection{}, false
}

// normalizeText removes zero-width characters and collapses space runs
// within each line. Newlines are preserved: an address is never assumed to
// span lines.
func normalizeText(text string) string {
	text = zeroWidthRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = multiSpaceRe.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}

// formatCandidates extracts raw candidates using the per-chain scan
// patterns.
func formatCandidates(text string) []string {
	var out []string

	out = append(out, tronScanRe.FindAllString(text, -1)...)
	out = append(out, evmScanRe.FindAllString(text, -1)...)

	// Solana runs need explicit alphanumeric boundaries: a base58 run glued
	// to other alphanumerics is part of a longer token, not an address.
	for _, loc := range base58RunRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if end-start < 32 || end-start > 44 {
			continue
		}
		if start > 0 && isAlnum(rune(text[start-1])) {
			continue
		}
		if end < len(text) && isAlnum(rune(text[end])) {
			continue
		}
		run := text[start:end]
		if strings.HasPrefix(run, "T") {
			continue
		}
		out = append(out, run)
	}
	return out
}

func isSeparator(r rune) bool {
	return strings.ContainsRune(wordSeparators, r)
}

package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden words in participant messages before they
// reach the room. Matching is case-insensitive and tolerant of common
// character substitutions and inserted punctuation.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

func NewModerator(forbidden []string, replacement rune) (Moderator, error) {
	patterns := make([][]rune, len(forbidden))
	for i, word := range forbidden {
		patterns[i], _ = fold([]rune(word))
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement}, nil
}

// Censor replaces every character of a matched word with the replacement
// rune. Unmatched text, including the punctuation inside a match, keeps
// its original position and length.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	folded, positions := fold(origRunes)
	if len(folded) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(folded, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(positions) {
			continue
		}
		for i := positions[start]; i <= positions[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes)
}

// fold lowercases, undoes digit-for-letter substitutions and strips
// punctuation and spacing. The second return value maps each folded rune
// back to its index in the input.
func fold(input []rune) ([]rune, []int) {
	folded := make([]rune, 0, len(input))
	positions := make([]int, 0, len(input))
	for i, r := range input {
		plain := unleet(r)
		if unicode.IsPunct(plain) || unicode.IsSpace(plain) || unicode.IsSymbol(plain) {
			continue
		}
		folded = append(folded, unicode.ToLower(plain))
		positions = append(positions, i)
	}
	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

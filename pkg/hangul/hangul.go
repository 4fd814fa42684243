// Package hangul converts Korean text into the key sequence that types it on
// the standard Dubeolsik (two-set) keyboard layout.
//
// The conversion is a pure function of its input. Composed syllables are
// decomposed arithmetically into leading consonant, vowel and trailing
// consonant; standalone compatibility jamo are looked up directly. Every other
// rune, including astral-plane runes, is copied through unchanged.
package hangul

import "strings"

const (
	// SyllableBase is the first code point of the Hangul Syllables block (가).
	SyllableBase = 0xAC00
	// SyllableLast is the last composed syllable (힣).
	SyllableLast = 0xD7A3
	// SyllableCount is the number of composed syllables in the block.
	SyllableCount = LeadCount * VowelCount * TrailCount

	// JamoFirst and JamoLast bound the Hangul Compatibility Jamo letters.
	JamoFirst = 0x3131
	JamoLast  = 0x318E

	LeadCount  = 19
	VowelCount = 21
	// TrailCount includes index 0, which means "no trailing consonant".
	TrailCount = 28
)

var leadKeys = [LeadCount]string{
	"r", "R", "s", "e", "E", "f", "a", "q", "Q", "t",
	"T", "d", "w", "W", "c", "z", "x", "v", "g",
}

var vowelKeys = [VowelCount]string{
	"k", "o", "i", "O", "j", "p", "u", "P", "h", "hk",
	"ho", "hl", "y", "n", "nj", "np", "nl", "b", "m", "ml",
	"l",
}

var trailKeys = [TrailCount]string{
	"", "r", "R", "rt", "s", "sw", "sg", "e", "f", "fr",
	"fa", "fq", "ft", "fx", "fv", "fg", "a", "q", "qt", "t",
	"T", "d", "w", "c", "z", "x", "v", "g",
}

var jamoKeys = map[rune]string{
	'ㄱ': "r", 'ㄲ': "R", 'ㄴ': "s", 'ㄷ': "e", 'ㄸ': "E",
	'ㄹ': "f", 'ㅁ': "a", 'ㅂ': "q", 'ㅃ': "Q", 'ㅅ': "t",
	'ㅆ': "T", 'ㅇ': "d", 'ㅈ': "w", 'ㅉ': "W", 'ㅊ': "c",
	'ㅋ': "z", 'ㅌ': "x", 'ㅍ': "v", 'ㅎ': "g",

	'ㅏ': "k", 'ㅐ': "o", 'ㅑ': "i", 'ㅒ': "O", 'ㅓ': "j",
	'ㅔ': "p", 'ㅕ': "u", 'ㅖ': "P", 'ㅗ': "h", 'ㅘ': "hk",
	'ㅙ': "ho", 'ㅚ': "hl", 'ㅛ': "y", 'ㅜ': "n", 'ㅝ': "nj",
	'ㅞ': "np", 'ㅟ': "nl", 'ㅠ': "b", 'ㅡ': "m", 'ㅢ': "ml",
	'ㅣ': "l",
}

// Encode returns the Dubeolsik key sequence for text. Runes that are not
// Hangul (or compatibility jamo without a key, such as archaic letters) are
// emitted unchanged.
func Encode(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteString(EncodeRune(r))
	}
	return b.String()
}

// EncodeRune returns the key sequence for a single rune.
func EncodeRune(r rune) string {
	if lead, vowel, trail, ok := Decompose(r); ok {
		return leadKeys[lead] + vowelKeys[vowel] + trailKeys[trail]
	}
	if r >= JamoFirst && r <= JamoLast {
		if keys, ok := jamoKeys[r]; ok {
			return keys
		}
	}
	return string(r)
}

// Decompose splits a composed syllable into its leading consonant, vowel and
// trailing consonant indices. Trail index 0 means the syllable has no final
// consonant. ok is false when r is not a composed syllable.
func Decompose(r rune) (lead, vowel, trail int, ok bool) {
	if !IsSyllable(r) {
		return 0, 0, 0, false
	}
	i := int(r - SyllableBase)
	lead = i / (VowelCount * TrailCount)
	vowel = (i % (VowelCount * TrailCount)) / TrailCount
	trail = i % TrailCount
	return lead, vowel, trail, true
}

// IsSyllable reports whether r lies in the composed Hangul Syllables block.
func IsSyllable(r rune) bool {
	return r >= SyllableBase && r <= SyllableLast
}

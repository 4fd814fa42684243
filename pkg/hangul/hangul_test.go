package hangul_test

import (
	"testing"
	"unicode/utf8"

	"github.com/jlrickert/ekr/pkg/hangul"
	"github.com/stretchr/testify/require"
)

func TestEncode_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "first_syllable", in: "가", want: "rk"},
		{name: "last_syllable", in: "힣", want: "glg"},
		{name: "word", in: "한글", want: "gksrmf"},
		{name: "greeting", in: "안녕하세요", want: "dkssudgktpdy"},
		{name: "double_trailing", in: "닭", want: "ekfr"},
		{name: "compound_vowel", in: "과의", want: "rhkdml"},
		{name: "tense_lead", in: "빵", want: "Qkd"},
		{name: "compatibility_jamo", in: "ㄱㅏㅘ", want: "rkhk"},
		{name: "unmapped_jamo_passthrough", in: "ㅥㆍ", want: "ㅥㆍ"},
		{name: "ascii_passthrough", in: "Note 1", want: "Note 1"},
		{name: "mixed", in: "Go 언어", want: "Go djsdj"},
		{name: "astral_passthrough", in: "😀가", want: "😀rk"},
		{name: "other_script_passthrough", in: "日本", want: "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, hangul.Encode(tt.in))
		})
	}
}

func TestEncode_EverySyllableIsNonEmptyASCII(t *testing.T) {
	t.Parallel()

	require.Equal(t, 11172, hangul.SyllableCount)
	require.Equal(t, hangul.SyllableLast-hangul.SyllableBase+1, hangul.SyllableCount)

	for r := rune(hangul.SyllableBase); r <= hangul.SyllableLast; r++ {
		out := hangul.Encode(string(r))
		require.NotEmpty(t, out, "syllable %U", r)
		require.GreaterOrEqual(t, len(out), 2, "syllable %U", r)
		require.LessOrEqual(t, len(out), 5, "syllable %U", r)
		for i := 0; i < len(out); i++ {
			require.Less(t, out[i], byte(utf8.RuneSelf), "syllable %U produced non-ascii %q", r, out)
		}
		require.Equal(t, out, hangul.Encode(string(r)))
	}
}

func TestDecompose(t *testing.T) {
	t.Parallel()

	lead, vowel, trail, ok := hangul.Decompose('가')
	require.True(t, ok)
	require.Equal(t, [3]int{0, 0, 0}, [3]int{lead, vowel, trail})

	lead, vowel, trail, ok = hangul.Decompose('힣')
	require.True(t, ok)
	require.Equal(t, [3]int{18, 20, 27}, [3]int{lead, vowel, trail})

	lead, vowel, trail, ok = hangul.Decompose('한')
	require.True(t, ok)
	require.Equal(t, [3]int{18, 0, 4}, [3]int{lead, vowel, trail})

	_, _, _, ok = hangul.Decompose('ㄱ')
	require.False(t, ok)
	_, _, _, ok = hangul.Decompose('a')
	require.False(t, ok)
}

func TestEncodeRune_MatchesEncode(t *testing.T) {
	t.Parallel()

	for _, r := range "한국어 keyboard ㅎㅎ" {
		require.Equal(t, hangul.Encode(string(r)), hangul.EncodeRune(r))
	}
}

package frontmatter_test

import (
	"testing"

	"github.com/jlrickert/ekr/pkg/frontmatter"
	"github.com/stretchr/testify/require"
)

func TestDecode_NoHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "plain_body", in: "# Title\n\nSome text\n"},
		{name: "delimiter_not_first_line", in: "intro\n---\ntitle: x\n---\n"},
		{name: "unclosed", in: "---\ntitle: x\nbody without close\n"},
		{name: "lone_delimiter", in: "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := frontmatter.Decode(tt.in)
			require.False(t, p.HadHeader)
			require.False(t, p.Malformed)
			require.Equal(t, tt.in, p.Body)
			require.Equal(t, 0, p.Fields.Len())
		})
	}
}

func TestDecode_KeysInOrder(t *testing.T) {
	t.Parallel()

	in := "---\ntitle: Note\ntags:\n  - a\n  - b\ncreated: 2024-01-01\n---\nbody\n"
	p := frontmatter.Decode(in)

	require.True(t, p.HadHeader)
	require.False(t, p.Malformed)
	require.Equal(t, []string{"title", "tags", "created"}, p.Fields.Keys())
	require.Equal(t, "body\n", p.Body)

	title, ok := p.Fields.Get("title")
	require.True(t, ok)
	require.Equal(t, "Note", title)

	tags, ok := p.Fields.Get("tags")
	require.True(t, ok)
	require.Equal(t, []any{"a", "b"}, tags)
}

func TestDecode_BodyKeptVerbatim(t *testing.T) {
	t.Parallel()

	in := "---\ntitle: x\n---\n\n\n# Heading\n---\nmore\n"
	p := frontmatter.Decode(in)

	require.True(t, p.HadHeader)
	require.Equal(t, "\n\n# Heading\n---\nmore\n", p.Body)
}

func TestDecode_EmptyBlock(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\n---\nbody")
	require.True(t, p.HadHeader)
	require.False(t, p.Malformed)
	require.Equal(t, 0, p.Fields.Len())
	require.Equal(t, "body", p.Body)
}

func TestDecode_ClosingDelimiterAtEOF(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\ntitle: x\n---")
	require.True(t, p.HadHeader)
	require.Equal(t, "", p.Body)
	require.True(t, p.Fields.Has("title"))
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "syntax_error", in: "---\ntitle: [unclosed\n---\nbody"},
		{name: "sequence_root", in: "---\n- a\n- b\n---\nbody"},
		{name: "scalar_root", in: "---\njust text\n---\nbody"},
		{name: "duplicate_keys", in: "---\na: 1\na: 2\n---\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := frontmatter.Decode(tt.in)
			require.True(t, p.HadHeader)
			require.True(t, p.Malformed)
			require.Equal(t, 0, p.Fields.Len())
			require.Equal(t, "body", p.Body)
		})
	}
}

func TestDecode_CRLF(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\r\ntitle: x\r\n---\r\nbody\r\n")
	require.True(t, p.HadHeader)
	require.False(t, p.Malformed)
	title, ok := p.Fields.Get("title")
	require.True(t, ok)
	require.Equal(t, "x", title)
	require.Equal(t, "body\r\n", p.Body)
}

func TestDecode_DelimiterTrailingWhitespace(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("--- \ntitle: x\n---\t\nbody")
	require.True(t, p.HadHeader)
	require.Equal(t, "body", p.Body)
}

func TestEncode_RoundTripUnchanged(t *testing.T) {
	t.Parallel()

	in := "---\ntitle: Note\ntags:\n  - a\n  - b\n---\nbody\n"
	out, err := frontmatter.Decode(in).Encode()
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncode_AddsHeaderToPlainDocument(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("# Title\n")
	p.Fields.SetStrings("aliases", []string{"one"})

	out, err := p.Encode()
	require.NoError(t, err)
	require.Equal(t, "---\naliases:\n  - one\n---\n# Title\n", out)
}

func TestEncode_EmptyFields(t *testing.T) {
	t.Parallel()

	out, err := frontmatter.Encode(frontmatter.NewFields(), "body")
	require.NoError(t, err)
	require.Equal(t, "---\n---\nbody", out)
}

func TestEncode_PreservesByteOrderMark(t *testing.T) {
	t.Parallel()

	in := "\uFEFF---\ntitle: x\n---\nbody"
	p := frontmatter.Decode(in)
	require.True(t, p.HadHeader)
	require.Equal(t, "body", p.Body)

	out, err := p.Encode()
	require.NoError(t, err)
	require.Equal(t, in, out)

	plain := frontmatter.Decode("\uFEFFbody")
	require.False(t, plain.HadHeader)
	require.Equal(t, "body", plain.Body)
}

func TestEncode_KeepsComments(t *testing.T) {
	t.Parallel()

	in := "---\ntitle: Note # the title\nstatus: draft\n---\nbody"
	p := frontmatter.Decode(in)
	p.Fields.SetStrings("aliases", []string{"x"})

	out, err := p.Encode()
	require.NoError(t, err)
	require.Contains(t, out, "# the title")

	reparsed := frontmatter.Decode(out)
	require.Equal(t, []string{"title", "status", "aliases"}, reparsed.Fields.Keys())
}

func TestFields_SetStringsKeepsFlowStyle(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\naliases: [a, b]\n---\n")
	p.Fields.SetStrings("aliases", []string{"a", "b", "c"})

	block, err := p.Fields.Marshal()
	require.NoError(t, err)
	require.Equal(t, "aliases: [a, b, c]\n", block)
}

func TestFields_SetStringsReplacesScalar(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\naliases: single\nother: 1\n---\n")
	p.Fields.SetStrings("aliases", []string{"single", "two"})

	got, ok := p.Fields.Get("aliases")
	require.True(t, ok)
	require.Equal(t, []any{"single", "two"}, got)
	require.Equal(t, []string{"aliases", "other"}, p.Fields.Keys())
}

func TestFields_SetAndDelete(t *testing.T) {
	t.Parallel()

	f := frontmatter.NewFields()
	require.NoError(t, f.Set("title", "Note"))
	require.NoError(t, f.Set("count", 3))
	require.Equal(t, 2, f.Len())

	require.True(t, f.Delete("title"))
	require.False(t, f.Delete("title"))
	require.False(t, f.Has("title"))

	m, err := f.Map()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"count": 3}, m)
}

func TestFields_NilSet(t *testing.T) {
	t.Parallel()

	var f *frontmatter.Fields
	err := f.Set("a", 1)
	require.ErrorIs(t, err, frontmatter.ErrNilFields)
	require.Equal(t, 0, f.Len())
}

func TestFields_NullValueIsPresent(t *testing.T) {
	t.Parallel()

	p := frontmatter.Decode("---\naliases:\n---\n")
	require.True(t, p.Fields.Has("aliases"))
	v, ok := p.Fields.Get("aliases")
	require.True(t, ok)
	require.Nil(t, v)
}

package routepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"/a", []string{"a"}},
		{"a/b", []string{"a", "b"}},
		{"/ascendant//descendant/", []string{"ascendant", "descendant"}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Split(tc.path), tc.path)
	}
}

func TestSplitSegments(t *testing.T) {
	segs, err := SplitSegments("/test/with%20space/a%2Fb")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Raw: "test", Value: "test"},
		{Raw: "with%20space", Value: "with space"},
		{Raw: "a%2Fb", Value: "a/b"},
	}, segs)

	segs, err = SplitSegments("/")
	require.NoError(t, err)
	assert.Nil(t, segs)

	_, err = SplitSegments("/ok/%zz")
	assert.ErrorIs(t, err, ErrInvalidEscape)
}

func TestDecodeSegment(t *testing.T) {
	v, err := DecodeSegment("caf%C3%A9")
	require.NoError(t, err)
	assert.Equal(t, "café", v)

	v, err = DecodeSegment("a+b")
	require.NoError(t, err)
	assert.Equal(t, "a+b", v)

	_, err = DecodeSegment("50%")
	assert.ErrorIs(t, err, ErrInvalidEscape)
}

func TestNormalizeAbsolute(t *testing.T) {
	assert.Equal(t, "", NormalizeAbsolute("/"))
	assert.Equal(t, "/base-path", NormalizeAbsolute("base-path"))
	assert.Equal(t, "/base-path", NormalizeAbsolute("/base-path/"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/", Join("", ""))
	assert.Equal(t, "/parent", Join("", "parent"))
	assert.Equal(t, "/parent", Join("/parent", ""))
	assert.Equal(t, "/parent/child", Join("/parent", "child"))
	assert.Equal(t, "/parent", Join("/", "parent"))
}

func TestStripBase(t *testing.T) {
	tests := []struct {
		path, base string
		want       string
		ok         bool
	}{
		{"/test", "", "/test", true},
		{"/base-path", "/base-path", "", true},
		{"/base-path/test", "/base-path", "/test", true},
		{"/base-path/test/", "/base-path", "/test", true},
		{"/test", "/base-path", "", false},
		{"/base-pathology", "/base-path", "", false},
	}

	for _, tc := range tests {
		got, ok := StripBase(tc.path, tc.base)
		assert.Equal(t, tc.ok, ok, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestWithBase(t *testing.T) {
	assert.Equal(t, "/base/test", WithBase("/test", "/base"))
	assert.Equal(t, "test", WithBase("test", "/base"))
	assert.Equal(t, "/test", WithBase("/test", ""))
	assert.Equal(t, "http://localhost/x", WithBase("http://localhost/x", "/base"))
}

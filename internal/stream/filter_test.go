package stream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const banner = "Debugger listening on ws://127.0.0.1:9229/0f2c936f-b1cd-4ac9-aab3-f63b0f33d55e\n" +
	"For help, see: https://nodejs.org/en/docs/inspector\n"

// writeAll writes each chunk in turn and closes the filter.
func writeAll(t *testing.T, chunks ...string) (string, *BannerFilter) {
	t.Helper()

	var out bytes.Buffer
	f := NewBannerFilter(&out)
	for _, chunk := range chunks {
		n, err := f.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	require.NoError(t, f.Close())
	return out.String(), f
}

// TestBannerFilter_SuppressesBanner verifies that the banner and its help
// line are removed and nothing else is.
func TestBannerFilter_SuppressesBanner(t *testing.T) {
	out, f := writeAll(t, banner, "error\n")
	assert.Equal(t, "error\n", out)
	assert.True(t, f.Suppressed())
}

// TestBannerFilter_SuccessWritesNothing verifies that a child printing only
// the banner produces no stderr at all.
func TestBannerFilter_SuccessWritesNothing(t *testing.T) {
	out, _ := writeAll(t, banner)
	assert.Empty(t, out)
}

// TestBannerFilter_SplitWrites verifies matching across arbitrary write
// boundaries.
func TestBannerFilter_SplitWrites(t *testing.T) {
	input := banner + "first\nsecond\n"
	for size := 1; size < len(input); size += 7 {
		var chunks []string
		for i := 0; i < len(input); i += size {
			end := i + size
			if end > len(input) {
				end = len(input)
			}
			chunks = append(chunks, input[i:end])
		}

		out, _ := writeAll(t, chunks...)
		assert.Equal(t, "first\nsecond\n", out, "chunk size %d", size)
	}
}

// TestBannerFilter_OnlyFirstBanner verifies that a later line resembling
// the banner is genuine output and passes through.
func TestBannerFilter_OnlyFirstBanner(t *testing.T) {
	out, _ := writeAll(t, banner, "Debugger listening on something else\n")
	assert.Equal(t, "Debugger listening on something else\n", out)
}

// TestBannerFilter_HelpLineMustFollowBanner verifies that the help line is
// only removed directly after the banner.
func TestBannerFilter_HelpLineMustFollowBanner(t *testing.T) {
	out, _ := writeAll(t,
		"Debugger listening on ws://127.0.0.1:9229/abc\n",
		"boom\n",
		"For help, see: https://nodejs.org/en/docs/inspector\n",
	)
	assert.Equal(t, "boom\nFor help, see: https://nodejs.org/en/docs/inspector\n", out)
}

// TestBannerFilter_ExactPrefix verifies that lines merely containing the
// banner text are not suppressed.
func TestBannerFilter_ExactPrefix(t *testing.T) {
	line := "warning: Debugger listening on ws://127.0.0.1:9229/abc\n"
	out, f := writeAll(t, line, banner)
	assert.Equal(t, line, out)
	assert.True(t, f.Suppressed())
}

// TestBannerFilter_NoBanner verifies output from a runtime that never prints
// a banner, including an unterminated trailing line flushed by Close.
func TestBannerFilter_NoBanner(t *testing.T) {
	out, f := writeAll(t, "one\n", "two")
	assert.Equal(t, "one\ntwo", out)
	assert.False(t, f.Suppressed())
}

// TestBannerFilter_CRLF verifies Windows line endings still match.
func TestBannerFilter_CRLF(t *testing.T) {
	out, _ := writeAll(t, strings.ReplaceAll(banner, "\n", "\r\n"), "x\r\n")
	assert.Equal(t, "x\r\n", out)
}

// TestBannerFilter_LongLine verifies that an oversized unterminated line is
// forwarded instead of buffered without bound.
func TestBannerFilter_LongLine(t *testing.T) {
	var out bytes.Buffer
	f := NewBannerFilter(&out)

	long := strings.Repeat("x", maxPending+1)
	_, err := f.Write([]byte(long))
	require.NoError(t, err)
	assert.Equal(t, long, out.String())
}

// TestBannerFilter_Passthrough verifies that writes after the banner go
// straight through without waiting for a newline.
func TestBannerFilter_Passthrough(t *testing.T) {
	var out bytes.Buffer
	f := NewBannerFilter(&out)

	_, err := f.Write([]byte(banner + "tail"))
	require.NoError(t, err)
	assert.Equal(t, "tail", out.String())

	_, err = f.Write([]byte(" more"))
	require.NoError(t, err)
	assert.Equal(t, "tail more", out.String())
}

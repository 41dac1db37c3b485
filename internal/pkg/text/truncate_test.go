package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "unchanged", Truncate("unchanged", 0))

	// 截断点落在多字节字符中间时退到字符边界
	s := strings.Repeat("好", 10)
	out := Truncate(s, 4)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "好...", out)
}

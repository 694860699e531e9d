package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	out := HTML("바나나우유는 **3000원** 입니다.")
	assert.Equal(t, "<p>바나나우유는 <strong>3000원</strong> 입니다.</p>", out)

	out = HTML("[link](https://example.com)")
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestHTMLStripsScripts(t *testing.T) {
	out := HTML("hello <script>alert(1)</script> <img src=x onerror=alert(1)>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "hello")
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"바나나우유는 **3000원** 입니다.", "바나나우유는 3000원 입니다."},
		{"# 가격\n\n- 바나나우유\n- 딸기우유\n", "가격 바나나우유 딸기우유"},
		{"plain <style>p{}</style>text", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := PlainText(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# 가격\n\n바나나우유는 **3000원** 입니다.", 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "3000원")
	assert.Contains(t, out, "가격")

	_, err = Terminal("x", 40, "no-such-style")
	assert.Error(t, err)
}

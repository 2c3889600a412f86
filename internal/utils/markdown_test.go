package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownStripsRawScript(t *testing.T) {
	out := string(RenderMarkdown("你好 <script>alert(1)</script> 世界"))
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "你好")
	assert.Contains(t, out, "世界")
}

func TestRenderMarkdownKeepsCodeLanguageClass(t *testing.T) {
	out := string(RenderMarkdown("```go\nfmt.Println(1)\n```"))
	assert.Contains(t, out, "<pre>")
	assert.Contains(t, out, "language-go")
}

func TestRenderMarkdownExternalLinks(t *testing.T) {
	out := string(RenderMarkdown("[示例](https://example.com)"))
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")
}

func TestRenderMarkdownDropsInlineEventHandlers(t *testing.T) {
	out := string(RenderMarkdown(`<img src="/x.png" onload="alert(1)">`))
	assert.NotContains(t, out, "onload")
}

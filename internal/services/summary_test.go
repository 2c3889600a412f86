package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryTestTitle = "Gopher scheduler preemption design"

const summaryTestContent = "Runtime threads multiplex goroutines onto kernel resources efficiently. " +
	"Gopher scheduler preemption design matters. " +
	"Channels coordinate independent workers through message passing. " +
	"Network pollers integrate blocking calls without dedicated threads."

func TestExtractiveSummaryFewSentences(t *testing.T) {
	// 不超过 3 句时全部原样保留，按原文顺序
	content := "This is the first sentence of the post. And here comes the second sentence."
	got := ExtractiveSummary("标题", content)

	expected := "- This is the first sentence of the post.\n- And here comes the second sentence."
	assert.Equal(t, expected, got)
}

func TestExtractiveSummaryShortSentenceFallback(t *testing.T) {
	// 全是短句时退回全文，保证总能给出要点
	got := ExtractiveSummary("标题", "短句。也短。")
	assert.Equal(t, "- 短句。\n- 也短。", got)
}

func TestExtractiveSummaryEmpty(t *testing.T) {
	assert.Equal(t, "", ExtractiveSummary("标题", ""))
}

func TestExtractiveSummaryPicksThreeInOrder(t *testing.T) {
	got := ExtractiveSummary(summaryTestTitle, summaryTestContent)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "- "))
	}

	// 要点是原文句子，按原文顺序输出，不按得分顺序
	expected := "- Runtime threads multiplex goroutines onto kernel resources efficiently.\n" +
		"- Gopher scheduler preemption design matters.\n" +
		"- Network pollers integrate blocking calls without dedicated threads."
	assert.Equal(t, expected, got)
}

func TestExtractiveSummaryTitleBoost(t *testing.T) {
	// 命中标题词的句子加权胜出；去掉标题后同一句落选
	boosted := ExtractiveSummary(summaryTestTitle, summaryTestContent)
	assert.Contains(t, boosted, "Gopher scheduler preemption design matters.")
	assert.NotContains(t, boosted, "Channels coordinate")

	plain := ExtractiveSummary("", summaryTestContent)
	assert.NotContains(t, plain, "Gopher scheduler preemption design matters.")
	assert.Contains(t, plain, "Channels coordinate")
}

func TestExtractiveSummaryShortSentencesFeedFrequencies(t *testing.T) {
	// 词频按全文统计：过短的句子自己不进摘要，但它的词计入语料，
	// 能把重复提及的主题句顶进前三
	content := "Morning commuters fill crowded subway platforms before sunrise. " +
		"Zig zag pathways wander home. " +
		"Zig zag. " +
		"Ancient stone bridges cross meandering rivers gracefully today. " +
		"Evening lanterns glow softly above narrow market streets."

	got := ExtractiveSummary("", content)

	expected := "- Morning commuters fill crowded subway platforms before sunrise.\n" +
		"- Zig zag pathways wander home.\n" +
		"- Evening lanterns glow softly above narrow market streets."
	assert.Equal(t, expected, got)
}

func TestSummarizeGenerative(t *testing.T) {
	// 模拟兼容 OpenAI Chat 接口的服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected Bearer test-token, got %s", r.Header.Get("Authorization"))
		}

		resp := ChatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{})
		resp.Choices[0].Message.Content = "- 要点一\n- 要点二"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	os.Setenv("LLM_BASE_URL", server.URL)
	os.Setenv("LLM_TOKEN", "test-token")
	os.Setenv("LLM_MODEL", "test-model")
	defer resetSummaryEnv()

	// 重置单例以便重新加载配置
	summaryService = nil
	s := GetSummaryService()

	got := s.Summarize("测试标题", "测试内容")
	assert.Equal(t, "- 要点一\n- 要点二", got)
}

func TestSummarizeFallsBackOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	os.Setenv("LLM_BASE_URL", server.URL)
	os.Setenv("LLM_TOKEN", "test-token")
	os.Setenv("LLM_MODEL", "test-model")
	defer resetSummaryEnv()

	summaryService = nil
	s := GetSummaryService()

	// 上游 5xx 时同步降级到抽取式摘要
	got := s.Summarize(summaryTestTitle, summaryTestContent)
	assert.Equal(t, ExtractiveSummary(summaryTestTitle, summaryTestContent), got)
}

func TestSummarizeWithoutConfig(t *testing.T) {
	resetSummaryEnv()

	s := GetSummaryService()
	got := s.Summarize(summaryTestTitle, summaryTestContent)
	assert.Equal(t, ExtractiveSummary(summaryTestTitle, summaryTestContent), got)
}

func resetSummaryEnv() {
	os.Unsetenv("LLM_BASE_URL")
	os.Unsetenv("LLM_TOKEN")
	os.Unsetenv("LLM_MODEL")
	summaryService = nil
}

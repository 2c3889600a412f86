package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
)

// SummaryService 帖子摘要服务
// 配置了兼容 OpenAI Chat 接口的服务时走生成式摘要，
// 未配置或调用失败时同步降级到本地抽取式摘要，错误不会透给用户
type SummaryService struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

var summaryService *SummaryService

// GetSummaryService 获取摘要服务单例
func GetSummaryService() *SummaryService {
	if summaryService == nil {
		summaryService = &SummaryService{
			baseURL: os.Getenv("LLM_BASE_URL"),
			token:   os.Getenv("LLM_TOKEN"),
			model:   os.Getenv("LLM_MODEL"),
			client: &http.Client{
				Timeout: 20 * time.Second,
			},
		}
	}
	return summaryService
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize 生成帖子摘要（1-3 条要点）
// 生成式接口属于尽力而为：任何错误都同步降级到抽取式摘要，不重试
func (s *SummaryService) Summarize(title, content string) string {
	if s.baseURL == "" || s.token == "" {
		return ExtractiveSummary(title, content)
	}

	summary, err := s.generate(title, content)
	if err != nil {
		log.Printf("生成式摘要失败，降级到抽取式: %v", err)
		return ExtractiveSummary(title, content)
	}
	return summary
}

func (s *SummaryService) generate(title, content string) (string, error) {
	prompt := fmt.Sprintf("用 1-3 条要点总结下面的帖子，每条要点以 \"- \" 开头，单独一行。\n标题：%s\n正文：\n%s", title, content)

	reqBody := ChatRequest{
		Model: s.model,
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUpstream
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", ErrUpstream
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrUpstream
	}

	result := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if result == "" {
		return "", ErrUpstream
	}
	return result, nil
}

// 抽取式摘要参数
const (
	summaryMaxBullets  = 3
	minSentenceRunes   = 20  // 低于该长度的句子不参与摘要
	titleBoost         = 2.5 // 命中标题词的词频加成
	firstSentenceBoost = 1.8
	lastSentenceBoost  = 1.4
)

var sentencePattern = regexp.MustCompile(`[^.!?。！？\n]+[.!?。！？]*`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "by": true, "from": true, "as": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "i": true,
	"you": true, "he": true, "she": true, "we": true, "they": true, "not": true,
	"no": true, "do": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "will": true, "would": true, "can": true, "could": true,
	"so": true, "if": true, "then": true, "than": true, "there": true,
	"的": true, "了": true, "是": true, "在": true, "和": true, "也": true,
	"就": true, "都": true, "而": true, "及": true, "与": true, "着": true,
}

type scoredSentence struct {
	text   string
	pos    int // 在原文中的句子序号
	tokens []string
	score  float64
}

// ExtractiveSummary 本地抽取式摘要：只从原文中挑句子，绝不生成新文本
// 算法：分句 -> 过滤过短句 -> 不超过 3 句则全部保留 ->
// 否则按全文词频给句子打分（长度开方归一，标题词 2.5 倍，
// 首句 1.8 倍、末句 1.4 倍加成），取前 3 再按原文顺序输出
// 确定性、无状态，单次遍历即可完成
func ExtractiveSummary(title, content string) string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return ""
	}

	qualifying := make([]scoredSentence, 0, len(sentences))
	for i, s := range sentences {
		if len([]rune(s)) >= minSentenceRunes {
			qualifying = append(qualifying, scoredSentence{text: s, pos: i})
		}
	}
	// 全是短句时退回全文，保证总能给出要点
	if len(qualifying) == 0 {
		for i, s := range sentences {
			qualifying = append(qualifying, scoredSentence{text: s, pos: i})
		}
	}

	if len(qualifying) <= summaryMaxBullets {
		return renderBullets(qualifying)
	}

	// 全文词频：没入选候选的短句也计入语料
	freq := make(map[string]int)
	for _, s := range sentences {
		for _, tok := range tokenize(s) {
			freq[tok]++
		}
	}
	for i := range qualifying {
		qualifying[i].tokens = tokenize(qualifying[i].text)
	}

	titleTokens := make(map[string]bool)
	for _, tok := range tokenize(title) {
		titleTokens[tok] = true
	}

	lastPos := len(sentences) - 1
	for i := range qualifying {
		s := &qualifying[i]
		sum := 0.0
		for _, tok := range s.tokens {
			w := float64(freq[tok])
			if titleTokens[tok] {
				w *= titleBoost
			}
			sum += w
		}
		if n := len(s.tokens); n > 0 {
			sum /= math.Sqrt(float64(n)) // 长句不该光靠长度取胜
		}
		if s.pos == 0 {
			sum *= firstSentenceBoost
		} else if s.pos == lastPos {
			sum *= lastSentenceBoost
		}
		s.score = sum
	}

	selected := make([]scoredSentence, len(qualifying))
	copy(selected, qualifying)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].score > selected[j].score
	})
	selected = selected[:summaryMaxBullets]

	// 输出按原文顺序，不按得分顺序
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].pos < selected[j].pos
	})

	return renderBullets(selected)
}

func renderBullets(sentences []scoredSentence) string {
	bullets := make([]string, 0, len(sentences))
	for _, s := range sentences {
		bullets = append(bullets, "- "+s.text)
	}
	return strings.Join(bullets, "\n")
}

func splitSentences(content string) []string {
	raw := sentencePattern.FindAllString(content, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

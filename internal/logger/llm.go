package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// 单独的 LLM 流水账：把发给模型的提示词和原始回复完整落盘，方便排查解析问题。

var (
	llmMu  sync.Mutex
	llmLog *log.Logger
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

func logLLM(kind, provider, agent string, sections map[string]string, order []string) {
	llmMu.Lock()
	l := llmLog
	llmMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM][" + kind + "]")
	if provider != "" {
		b.WriteString("[" + provider + "]")
	}
	if agent != "" {
		b.WriteString("[" + agent + "]")
	}
	b.WriteString("\n")
	for _, title := range order {
		body := sections[title]
		if strings.TrimSpace(body) == "" {
			continue
		}
		b.WriteString("--- " + title + " ---\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

func LogLLMRequest(provider, agent, systemPrompt, userPrompt string) {
	logLLM("request", provider, agent,
		map[string]string{"SYSTEM": systemPrompt, "USER": userPrompt},
		[]string{"SYSTEM", "USER"})
}

func LogLLMResponse(provider, agent, raw string) {
	logLLM("response", provider, agent,
		map[string]string{"RAW": raw},
		[]string{"RAW"})
}

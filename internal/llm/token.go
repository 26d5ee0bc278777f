package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encMu     sync.Mutex
	encodings = map[string]*tiktoken.Tiktoken{}
)

func encodingFor(model string) string {
	switch model {
	case "gpt-4o", "gpt-4o-mini":
		return "o200k_base"
	}
	return "cl100k_base"
}

// EstimateTokens approximates the token count of text for model. When no
// encoding can be loaded it falls back to four bytes per token.
func EstimateTokens(text, model string) int64 {
	if text == "" {
		return 0
	}
	name := encodingFor(model)

	encMu.Lock()
	tkm, ok := encodings[name]
	if !ok {
		var err error
		tkm, err = tiktoken.GetEncoding(name)
		if err != nil {
			tkm = nil
		}
		encodings[name] = tkm
	}
	encMu.Unlock()

	if tkm == nil {
		return int64(len(text) / 4)
	}
	return int64(len(tkm.Encode(text, nil, nil)))
}

// EstimateMessagesTokens estimates the prompt size of messages.
func EstimateMessagesTokens(messages []Message, model string) int64 {
	var total int64
	for _, msg := range messages {
		total += EstimateTokens(msg.Content, model) + 4
	}
	return total
}

package assist

import (
	"context"
	"os"
	"strings"
	"time"

	"demandflow/bizerror"
	"demandflow/misc"
	"demandflow/session"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type PromptKind string

const (
	KindAnalyzeInsight    PromptKind = "analyze_insight"
	KindValidateIdea      PromptKind = "validate_idea"
	KindImproveSuggestion PromptKind = "improve_suggestion"
	KindFindSimilar       PromptKind = "find_similar_demands"
)

// RequestTimeout bounds every completion call so a slow upstream
// never stalls the request goroutine.
var RequestTimeout = 30 * time.Second

type AssistRequest struct {
	Kind  PromptKind `json:"kind" binding:"required" validate:"required,oneof=analyze_insight validate_idea improve_suggestion find_similar_demands"`
	Texto string     `json:"texto" binding:"required" validate:"required"`
}

type AssistResult struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

var (
	GenerateFunc = Generate

	activeClient *openai.Client
	activeModel  string
)

// Bootstrap reads LLM_BASE_URL, LLM_API_KEY and LLM_MODEL. The assistant
// stays disabled when no key is configured.
func Bootstrap() {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		logrus.Warnln("LLM_API_KEY is not set, text assistant is disabled")
		return
	}

	conf := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		conf.BaseURL = baseURL
	}
	activeModel = os.Getenv("LLM_MODEL")
	if activeModel == "" {
		activeModel = openai.GPT4oMini
	}
	activeClient = openai.NewClientWithConfig(conf)
}

func systemPrompt(kind PromptKind) string {
	switch kind {
	case KindAnalyzeInsight:
		return "Você é um analista de demandas. Analise o insight recebido e aponte o problema de negócio, " +
			"os impactos esperados e os riscos de implementação. Responda em português, de forma objetiva."
	case KindValidateIdea:
		return "Você é um avaliador de ideias de automação. Avalie a viabilidade da ideia recebida, " +
			"indicando pontos fortes, pontos fracos e uma recomendação final. Responda em português."
	case KindImproveSuggestion:
		return "Você é um revisor de textos de demandas. Reescreva a descrição recebida de forma mais clara " +
			"e completa, mantendo o sentido original. Responda apenas com o texto revisado, em português."
	case KindFindSimilar:
		return "Você é um assistente de triagem. A partir do texto recebido, liste palavras-chave e termos de " +
			"busca que ajudem a localizar demandas similares já registradas. Responda em português."
	}
	return ""
}

func Generate(req *AssistRequest, s *session.Session) (*AssistResult, error) {
	if s == nil || !s.Active {
		return nil, bizerror.ErrForbidden
	}
	if strings.TrimSpace(req.Texto) == "" {
		return nil, &misc.ErrBadParam{}
	}
	if activeClient == nil {
		return nil, bizerror.ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(requestContext(s), RequestTimeout)
	defer cancel()

	resp, err := activeClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: activeModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.Kind)},
			{Role: openai.ChatMessageRoleUser, Content: req.Texto},
		},
	})
	if err != nil {
		logrus.Warnf("assistant completion failed: %v", err)
		return &AssistResult{Success: false, Error: err.Error()}, nil
	}
	if len(resp.Choices) == 0 {
		return &AssistResult{Success: false, Error: "empty completion"}, nil
	}
	return &AssistResult{Success: true, Response: resp.Choices[0].Message.Content}, nil
}

func requestContext(s *session.Session) context.Context {
	if s != nil && s.Context != nil {
		return s.Context
	}
	return context.Background()
}

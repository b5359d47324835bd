package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/community-workspace-api/internal/constants"
	"github.com/yukikurage/community-workspace-api/internal/models"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoItemsGenerated     = errors.New("AI did not suggest any items")
	ErrNotesRequired          = errors.New("meeting notes are required")
)

// AIService drafts meeting items from free-form notes
type AIService struct {
	client *openai.Client
	now    func() time.Time
}

// SuggestedItem is a task or commitment drafted from meeting notes
type SuggestedItem struct {
	Kind        models.ItemKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority,omitempty"`
	DueDate     *time.Time      `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		now:    time.Now,
	}
}

const suggestPrompt = `Eres un asistente que documenta reuniones de comunidades educativas. A partir de las notas de la reunión, extrae las tareas y los compromisos concretos.

Fecha actual: %s

Notas:
%s

Devuelve un arreglo JSON con este formato:
[
  {
    "kind": "task" o "commitment",
    "title": "título breve",
    "description": "detalle",
    "priority": "baja", "media", "alta" o "critica" (solo para tareas),
    "due_date": "fecha límite en ISO8601, por ejemplo 2026-10-28T23:59:59Z, o null si no se menciona"
  }
]

Reglas:
- Si no hay tareas ni compromisos devuelve []
- Convierte expresiones relativas ("mañana", "la próxima semana") en fechas concretas
- Devuelve solo JSON, sin explicaciones`

// SuggestItems asks the model for tasks and commitments found in notes.
// Entries with an unknown kind or an empty title are dropped.
func (s *AIService) SuggestItems(ctx context.Context, notes string) ([]SuggestedItem, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, ErrNotesRequired
	}

	prompt := fmt.Sprintf(suggestPrompt, s.now().Format("2006-01-02 15:04:05"), notes)
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrAINoItemsGenerated
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	var raw []SuggestedItem
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	items := make([]SuggestedItem, 0, len(raw))
	for _, item := range raw {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			continue
		}
		switch item.Kind {
		case models.ItemKindTask:
			if !item.Priority.Valid() {
				item.Priority = models.PriorityMedium
			}
		case models.ItemKindCommitment:
			item.Priority = ""
		default:
			continue
		}
		items = append(items, item)
		if len(items) == constants.MaxAIGeneratedItems {
			break
		}
	}
	if len(items) == 0 {
		return nil, ErrAINoItemsGenerated
	}
	return items, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"voicepad-be/internal/dto"
	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dates"
	"voicepad-be/pkg/voice/intent"

	"go.uber.org/zap"
)

// IAiService exposes the stateless AI helpers: one-shot parsing and text
// generation outside the conversational flow. Every operation degrades to a
// deterministic fallback when no LLM is reachable.
type IAiService interface {
	ParseTask(ctx context.Context, req *dto.ParseTaskRequest) (*dto.ParseTaskResponse, error)
	ParseNote(ctx context.Context, req *dto.ParseNoteRequest) (*dto.ParseNoteResponse, error)
	SuggestDueDate(ctx context.Context, req *dto.SuggestDueDateRequest) (*dto.SuggestDueDateResponse, error)
	SummarizeNote(ctx context.Context, req *dto.SummarizeNoteRequest) (*dto.SummarizeNoteResponse, error)
	RewriteNote(ctx context.Context, req *dto.RewriteNoteRequest) (*dto.RewriteNoteResponse, error)
	BulkAction(ctx context.Context, req *dto.BulkActionRequest) (*dto.BulkActionResponse, error)
	SearchSuggestions(ctx context.Context, req *dto.SearchSuggestionsRequest) (*dto.SearchSuggestionsResponse, error)
	Status(ctx context.Context) *dto.AiStatusResponse
}

type aiService struct {
	provider     llm.LLMProvider // nil when running fallback-only
	providerName string
	modelName    string
	fallback     *intent.Fallback
	logger       *zap.Logger
	now          func() time.Time
}

func NewAiService(provider llm.LLMProvider, providerName, modelName string, logger *zap.Logger) IAiService {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	return &aiService{
		provider:     provider,
		providerName: providerName,
		modelName:    modelName,
		fallback:     intent.NewFallback(now),
		logger:       logger,
		now:          now,
	}
}

const llmTimeout = 10 * time.Second

func (s *aiService) ParseTask(ctx context.Context, req *dto.ParseTaskRequest) (*dto.ParseTaskResponse, error) {
	if s.provider != nil {
		if parsed, ok := s.llmParseTask(ctx, req.Transcript); ok {
			return parsed, nil
		}
	}

	task := s.fallback.ParseTask(req.Transcript)
	return &dto.ParseTaskResponse{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Category:    task.Category,
		Priority:    task.Priority,
		Source:      "fallback",
	}, nil
}

func (s *aiService) llmParseTask(ctx context.Context, transcript string) (*dto.ParseTaskResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Extract task fields from a voice transcript.\n\n")
	sb.WriteString("<transcript>\n")
	sb.WriteString(transcript)
	sb.WriteString("\n</transcript>\n\n")
	sb.WriteString("Today is " + s.now().Format("Monday, 2006-01-02") + ".\n")
	sb.WriteString("Respond with ONLY a JSON object: {\"title\": string, \"description\": string, ")
	sb.WriteString("\"dueDate\": \"YYYY-MM-DD\" or \"\", \"category\": one of Work/Personal/Health/Learning/Finance, ")
	sb.WriteString("\"priority\": one of low/medium/high}\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.1))
	if err != nil {
		s.logger.Warn("llm parse-task failed, using fallback", zap.Error(err))
		return nil, false
	}

	var parsed voice.ParsedTask
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &parsed); err != nil || parsed.Title == "" {
		s.logger.Warn("llm parse-task returned malformed JSON, using fallback", zap.Error(err))
		return nil, false
	}
	if parsed.Priority == "" {
		parsed.Priority = voice.PriorityMedium
	}

	return &dto.ParseTaskResponse{
		Title:       parsed.Title,
		Description: parsed.Description,
		DueDate:     parsed.DueDate,
		Category:    parsed.Category,
		Priority:    parsed.Priority,
		Source:      "llm",
	}, true
}

func (s *aiService) ParseNote(ctx context.Context, req *dto.ParseNoteRequest) (*dto.ParseNoteResponse, error) {
	if s.provider != nil {
		if parsed, ok := s.llmParseNote(ctx, req.Transcript); ok {
			return parsed, nil
		}
	}

	// Deterministic fallback: the transcript itself becomes the draft title
	// and the user fills in content in the dialog.
	note := s.fallback.ParseNoteDraft(req.Transcript)
	return &dto.ParseNoteResponse{
		Title:   note.Title,
		Content: note.Content,
		Source:  "fallback",
	}, nil
}

func (s *aiService) llmParseNote(ctx context.Context, transcript string) (*dto.ParseNoteResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Extract a note from a voice transcript.\n\n")
	sb.WriteString("<transcript>\n")
	sb.WriteString(transcript)
	sb.WriteString("\n</transcript>\n\n")
	sb.WriteString("Respond with ONLY a JSON object: {\"title\": string, \"content\": string, \"tags\": [string]}\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.1))
	if err != nil {
		s.logger.Warn("llm parse-note failed, using fallback", zap.Error(err))
		return nil, false
	}

	var parsed struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &parsed); err != nil || parsed.Title == "" {
		s.logger.Warn("llm parse-note returned malformed JSON, using fallback", zap.Error(err))
		return nil, false
	}

	return &dto.ParseNoteResponse{
		Title:   parsed.Title,
		Content: parsed.Content,
		Tags:    parsed.Tags,
		Source:  "llm",
	}, true
}

func (s *aiService) SuggestDueDate(ctx context.Context, req *dto.SuggestDueDateRequest) (*dto.SuggestDueDateResponse, error) {
	if s.provider != nil {
		if suggested, ok := s.llmSuggestDueDate(ctx, req); ok {
			return suggested, nil
		}
	}

	text := req.Title + " " + req.Description

	// A date phrase in the title or description wins outright.
	if resolved, ok := dates.Resolve(text, s.now()); ok {
		return &dto.SuggestDueDateResponse{DueDate: resolved, Source: "fallback"}, nil
	}

	// Heuristic default: urgent-sounding tasks get tomorrow, the rest get
	// next week.
	due := s.now().AddDate(0, 0, 7)
	if intent.DetectPriority(text) == voice.PriorityHigh {
		due = s.now().AddDate(0, 0, 1)
	}
	return &dto.SuggestDueDateResponse{DueDate: due.Format("2006-01-02"), Source: "fallback"}, nil
}

func (s *aiService) llmSuggestDueDate(ctx context.Context, req *dto.SuggestDueDateRequest) (*dto.SuggestDueDateResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Given the following task, suggest a realistic due date in YYYY-MM-DD format ")
	sb.WriteString("that is neither too soon nor too far, based on its title and description.\n")
	sb.WriteString("Today is " + s.now().Format("Monday, 2006-01-02") + ".\n")
	sb.WriteString("Title: \"" + req.Title + "\"\n")
	if req.Description != "" {
		sb.WriteString("Description: \"" + req.Description + "\"\n")
	}
	sb.WriteString("Respond with ONLY a JSON object: {\"suggestedDate\": \"YYYY-MM-DD\"}\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.1))
	if err != nil {
		s.logger.Warn("llm suggest-due-date failed, using fallback", zap.Error(err))
		return nil, false
	}

	var parsed struct {
		SuggestedDate string `json:"suggestedDate"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &parsed); err != nil {
		s.logger.Warn("llm suggest-due-date returned malformed JSON, using fallback", zap.Error(err))
		return nil, false
	}
	if _, err := time.Parse("2006-01-02", parsed.SuggestedDate); err != nil {
		s.logger.Warn("llm suggest-due-date returned a non-date, using fallback",
			zap.String("suggested", parsed.SuggestedDate))
		return nil, false
	}

	return &dto.SuggestDueDateResponse{DueDate: parsed.SuggestedDate, Source: "llm"}, true
}

func (s *aiService) SummarizeNote(ctx context.Context, req *dto.SummarizeNoteRequest) (*dto.SummarizeNoteResponse, error) {
	if s.provider != nil {
		ctx, cancel := context.WithTimeout(ctx, llmTimeout)
		defer cancel()

		prompt := "Summarize the following note in at most two sentences. Respond with only the summary.\n\n" + req.Content
		response, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
		if err == nil && strings.TrimSpace(response) != "" {
			return &dto.SummarizeNoteResponse{
				Summary: strings.TrimSpace(response),
				Source:  "llm",
			}, nil
		}
		if err != nil {
			s.logger.Warn("llm summarize failed, using fallback", zap.Error(err))
		}
	}

	return &dto.SummarizeNoteResponse{
		Summary: basicSummary(req.Content),
		Source:  "fallback",
	}, nil
}

func (s *aiService) RewriteNote(ctx context.Context, req *dto.RewriteNoteRequest) (*dto.RewriteNoteResponse, error) {
	if s.provider != nil {
		if rewritten, ok := s.llmRewriteNote(ctx, req); ok {
			return &dto.RewriteNoteResponse{Rewritten: rewritten, Source: "llm"}, nil
		}
	}

	return &dto.RewriteNoteResponse{
		Rewritten: basicRewrite(req.Content, req.Tone),
		Source:    "fallback",
	}, nil
}

func (s *aiService) llmRewriteNote(ctx context.Context, req *dto.RewriteNoteRequest) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Rewrite the following note in a " + req.Tone + " tone. ")
	sb.WriteString("Respond with ONLY a JSON object: {\"rewritten\": \"...\"}\n\n")
	sb.WriteString("<note>\n")
	sb.WriteString(req.Content)
	sb.WriteString("\n</note>\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.5))
	if err != nil {
		s.logger.Warn("llm rewrite-note failed, using fallback", zap.Error(err))
		return "", false
	}

	var parsed struct {
		Rewritten string `json:"rewritten"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &parsed); err != nil || strings.TrimSpace(parsed.Rewritten) == "" {
		s.logger.Warn("llm rewrite-note returned malformed JSON, using fallback", zap.Error(err))
		return "", false
	}

	return strings.TrimSpace(parsed.Rewritten), true
}

func (s *aiService) BulkAction(ctx context.Context, req *dto.BulkActionRequest) (*dto.BulkActionResponse, error) {
	if s.provider != nil {
		if ops, ok := s.llmBulkAction(ctx, req.CommandText); ok {
			return &dto.BulkActionResponse{Operations: ops, Source: "llm"}, nil
		}
	}

	return &dto.BulkActionResponse{
		Operations: fallbackBulkOps(req.CommandText),
		Source:     "fallback",
	}, nil
}

func (s *aiService) llmBulkAction(ctx context.Context, commandText string) ([]dto.BulkActionOp, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Interpret this bulk task command and return a JSON array of operations to perform.\n\n")
	sb.WriteString("Command: \"" + commandText + "\"\n\n")
	sb.WriteString("Each op: {\"type\": \"update\"|\"toggle\", \"filter\": {\"overdue\": true|false}, \"data\": {...fields}}\n")
	sb.WriteString("Only return valid operations. Respond with ONLY the JSON array.\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.1))
	if err != nil {
		s.logger.Warn("llm bulk-action failed, using fallback", zap.Error(err))
		return nil, false
	}

	var ops []dto.BulkActionOp
	if err := json.Unmarshal([]byte(extractJSONArray(response)), &ops); err != nil {
		s.logger.Warn("llm bulk-action returned malformed JSON, using fallback", zap.Error(err))
		return nil, false
	}

	// Keep only ops of a known type; a fully invalid plan is an oracle failure.
	valid := ops[:0]
	for _, op := range ops {
		if op.Type == "update" || op.Type == "toggle" {
			valid = append(valid, op)
		}
	}
	if len(valid) == 0 {
		return nil, false
	}
	return valid, true
}

// fallbackBulkOps handles the common phrasings without an oracle: completion
// verbs become a toggle, an explicit priority becomes an update, "overdue"
// scopes either one.
func fallbackBulkOps(commandText string) []dto.BulkActionOp {
	text := strings.ToLower(commandText)

	var filter *dto.BulkActionFilter
	if strings.Contains(text, "overdue") {
		overdue := true
		filter = &dto.BulkActionFilter{Overdue: &overdue}
	}

	if strings.Contains(text, "complete") || strings.Contains(text, "done") || strings.Contains(text, "finish") {
		return []dto.BulkActionOp{{Type: "toggle", Filter: filter}}
	}
	if strings.Contains(text, "priority") {
		if p := intent.DetectPriority(text); p != voice.PriorityMedium {
			return []dto.BulkActionOp{{
				Type:   "update",
				Filter: filter,
				Data:   map[string]interface{}{"priority": p},
			}}
		}
	}
	return []dto.BulkActionOp{}
}

func (s *aiService) SearchSuggestions(ctx context.Context, req *dto.SearchSuggestionsRequest) (*dto.SearchSuggestionsResponse, error) {
	if s.provider != nil {
		if suggestions, ok := s.llmSearchSuggestions(ctx, req); ok {
			return &dto.SearchSuggestionsResponse{Suggestions: suggestions}, nil
		}
	}

	return &dto.SearchSuggestionsResponse{
		Suggestions: []string{
			req.Query + " tasks",
			req.Query + " notes",
			"high priority " + req.Query,
		},
	}, nil
}

func (s *aiService) llmSearchSuggestions(ctx context.Context, req *dto.SearchSuggestionsRequest) ([]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("Based on the user's search query and their existing tasks and notes, suggest 3-5 relevant search terms or phrases.\n\n")
	sb.WriteString("Search Query: \"" + req.Query + "\"\n\n")
	sb.WriteString("Existing Task Titles: " + strings.Join(req.TaskTitles, ", ") + "\n")
	sb.WriteString("Existing Note Titles: " + strings.Join(req.NoteTitles, ", ") + "\n\n")
	sb.WriteString("Respond with ONLY a JSON array of strings.\n")

	response, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.3))
	if err != nil {
		s.logger.Warn("llm search-suggestions failed, using fallback", zap.Error(err))
		return nil, false
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(extractJSONArray(response)), &suggestions); err == nil && len(suggestions) > 0 {
		return suggestions, true
	}

	// Not a JSON array; salvage non-empty lines like the original did.
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, false
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}
	return lines, true
}

func (s *aiService) Status(ctx context.Context) *dto.AiStatusResponse {
	res := &dto.AiStatusResponse{
		Provider: s.providerName,
		Model:    s.modelName,
	}
	if s.provider == nil {
		res.Status = "unavailable"
		res.Message = "No LLM provider is configured"
		return res
	}

	// A configured provider can still be dead or rejecting the key; probe
	// with a tiny generation instead of trusting the wiring.
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	if _, err := s.provider.Generate(ctx, "Hello", llm.WithMaxTokens(5)); err != nil {
		s.logger.Warn("ai status probe failed", zap.Error(err))
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") {
			res.Status = "unauthorized"
			res.Message = "Invalid API key"
		} else {
			res.Status = "error"
			res.Message = "AI services are currently unavailable"
		}
		return res
	}

	res.Status = "available"
	res.Message = "AI services are operational"
	return res
}

// basicSummary is the no-LLM degradation: the first two sentences, or the
// first 200 characters when no sentence boundary is found.
func basicSummary(content string) string {
	text := strings.Join(strings.Fields(content), " ")

	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
			if len(sentences) == 2 {
				break
			}
		}
	}

	if len(sentences) > 0 {
		return strings.Join(sentences, " ")
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}

// basicRewrite is the no-LLM degradation for rewrite-note: a concise rewrite
// shortens to the extractive summary, the other tones return the note with
// whitespace normalized since no local rules can change register.
func basicRewrite(content, tone string) string {
	if tone == "concise" {
		return basicSummary(content)
	}
	return strings.Join(strings.Fields(content), " ")
}

// extractJSONObject pulls the outermost {...} from a model response that may
// be wrapped in markdown fences or prose.
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return response
	}
	return response[start : end+1]
}

// extractJSONArray pulls the outermost [...] from a model response.
func extractJSONArray(response string) string {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return response
	}
	return response[start : end+1]
}

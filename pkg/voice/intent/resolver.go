package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voicepad-be/pkg/llm"
	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dates"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// oracleResult is the schema the oracle's JSON must satisfy. A violation is
// an oracle failure, not a crash.
type oracleResult struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message" validate:"required"`
	Action      string                 `json:"action" validate:"omitempty,oneof=navigate search set_state reset_state create_task_finalized create_note_finalized none"`
	Parameters  map[string]interface{} `json:"parameters"`
	Suggestions []string               `json:"suggestions"`
}

// Resolver classifies a final transcript plus conversation state into a
// CommandResult. It never returns an error to the caller: oracle failures
// degrade to the deterministic fallback parser.
type Resolver struct {
	provider llm.LLMProvider // nil runs fallback-only
	fallback *Fallback
	validate *validator.Validate
	cache    *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

const (
	oracleRetries = 1
	cacheTTL      = 60 * time.Second
)

func NewResolver(provider llm.LLMProvider, logger *zap.Logger, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		provider: provider,
		fallback: NewFallback(now),
		validate: validator.New(),
		cache:    cache.New(cacheTTL, 10*time.Minute),
		logger:   logger,
		now:      now,
	}
}

// Resolve is a pure function of its inputs and the oracle's output. It always
// returns a well-formed result within the oracle's timeout bound.
func (r *Resolver) Resolve(ctx context.Context, transcript string, state voice.ConversationState, meta voice.ContextMetadata) *voice.CommandResult {
	if !state.IsValid() {
		state = voice.StateIdle
	}

	if r.provider == nil {
		return r.fallback.Resolve(transcript, state)
	}

	// The prompt embeds a per-second NOW timestamp, so the cache is keyed on
	// what actually identifies the request: transcript, state and page.
	cacheKey := transcript + "\x00" + string(state) + "\x00" + meta.CurrentPath

	if cached, found := r.cache.Get(cacheKey); found {
		if result, ok := cached.(*voice.CommandResult); ok {
			return result
		}
	}

	result, err := r.askOracle(ctx, buildPrompt(transcript, state, meta))
	if err != nil {
		r.logger.Warn("oracle unavailable, using fallback parser",
			zap.String("state", string(state)), zap.Error(err))
		return r.fallback.Resolve(transcript, state)
	}

	result = r.enforceInvariants(result, transcript, state)
	r.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return result
}

// askOracle calls the completion oracle, retrying once on failure or schema
// violation.
func (r *Resolver) askOracle(ctx context.Context, prompt string) (*voice.CommandResult, error) {
	var lastErr error
	for attempt := 0; attempt <= oracleRetries; attempt++ {
		response, err := r.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
		if err != nil {
			lastErr = err
			continue
		}

		result, err := r.parseOracle(response)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}
	return nil, lastErr
}

func (r *Resolver) parseOracle(response string) (*voice.CommandResult, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in oracle response")
	}

	var raw oracleResult
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return nil, fmt.Errorf("oracle JSON unmarshal failed: %w", err)
	}

	if err := r.validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("oracle schema violation: %w", err)
	}

	return &voice.CommandResult{
		Success:     raw.Success,
		Message:     raw.Message,
		Action:      raw.Action,
		Parameters:  raw.Parameters,
		Suggestions: raw.Suggestions,
	}, nil
}

// enforceInvariants post-validates the oracle's semantics: finalized actions
// must carry the fields finalization requires, and set_state must name a real
// state. Violations are repaired locally rather than surfaced.
func (r *Resolver) enforceInvariants(result *voice.CommandResult, transcript string, state voice.ConversationState) *voice.CommandResult {
	switch result.Action {
	case voice.ActionCreateTaskFinalized:
		task := result.TaskParams()
		if task.Title == "" {
			r.logger.Warn("oracle finalized a task without a title, demoting to clarification")
			return askForState(voice.StateAwaitingTaskDetails,
				"What should the task be called?",
				[]string{"Finish the report", "Buy groceries"})
		}
		if task.DueDate == "" {
			// The oracle sometimes omits the date it clearly saw; re-resolve
			// from the transcript before giving up.
			if due, ok := dates.Resolve(transcript, r.now()); ok {
				result.Parameters["dueDate"] = due
				return result
			}
			return askForState(voice.StateAwaitingTaskDetails,
				"When is \""+task.Title+"\" due?",
				[]string{"Tomorrow", "Friday", "Next week"})
		}
	case voice.ActionCreateNoteFinalized:
		note := result.NoteParams()
		if note.Title == "" || note.Content == "" {
			r.logger.Warn("oracle finalized a note without title or content, demoting to clarification")
			return askForState(voice.StateAwaitingNoteContent,
				"What should the note say?",
				[]string{"The meeting moved to Thursday"})
		}
	case voice.ActionSetState:
		if !result.ParamState().IsValid() {
			r.logger.Warn("oracle set_state named an unknown state, using fallback",
				zap.String("state", string(result.ParamState())))
			return r.fallback.Resolve(transcript, state)
		}
	case voice.ActionSearch:
		if result.ParamString("query") == "" {
			return askForState(voice.StateAwaitingSearchQuery,
				"What would you like to search for?",
				[]string{"High priority work tasks"})
		}
	}
	return result
}

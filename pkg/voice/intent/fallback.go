package intent

import (
	"regexp"
	"strings"
	"time"

	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dates"
)

// Fallback is the deterministic keyword parser used when the oracle is
// unreachable or returns unusable output. It covers the four intent families
// (navigation, search, task creation, note creation) over a fixed vocabulary.
type Fallback struct {
	now func() time.Time
}

func NewFallback(now func() time.Time) *Fallback {
	if now == nil {
		now = time.Now
	}
	return &Fallback{now: now}
}

var categoryKeywords = map[string][]string{
	"Work":     {"work", "job", "office", "meeting", "project", "client"},
	"Personal": {"personal", "home", "family", "self"},
	"Health":   {"health", "doctor", "gym", "exercise", "medical"},
	"Learning": {"learn", "study", "read", "course", "book"},
	"Finance":  {"finance", "money", "pay", "bill", "budget"},
}

var (
	highPriorityWords = []string{"high", "urgent", "important", "critical"}
	lowPriorityWords  = []string{"low", "minor", "later"}
)

var cancelPhrases = []string{"cancel", "never mind", "nevermind", "stop", "forget it"}

var navPages = []struct {
	Keywords []string
	URL      string
	Name     string
}{
	{[]string{"tasks", "task list", "todo", "todos"}, "/tasks", "tasks"},
	{[]string{"notes", "notebook"}, "/notes", "notes"},
	{[]string{"calendar", "schedule"}, "/calendar", "calendar"},
	{[]string{"search"}, "/search", "search"},
	{[]string{"account", "settings", "profile"}, "/account", "account"},
	{[]string{"voice guide", "voice help", "assistant guide"}, "/voice", "voice guide"},
	{[]string{"home", "dashboard"}, "/", "home"},
}

var navTriggers = []string{"go to", "navigate to", "take me to", "open", "show me", "show my", "show"}

var searchTriggers = []string{"search for", "look for", "look up", "search", "find"}

var (
	taskTriggerPattern = regexp.MustCompile(`(?i)^(please\s+)?((create|add|make|start)\s+(a\s+|new\s+)?task|new\s+task|remind\s+me)\b`)
	noteTriggerPattern = regexp.MustCompile(`(?i)^(please\s+)?((take|create|add|make|write)\s+(a\s+|new\s+)?note|new\s+note)\b`)

	taskPrefixStrip = regexp.MustCompile(`(?i)^(please\s+)?((create|add|make|start)\s+(a\s+|new\s+)?task|new\s+task|remind\s+me)\s*(to|for|called|titled|about|:)?\s*`)
	notePrefixStrip = regexp.MustCompile(`(?i)^(please\s+)?((take|create|add|make|write)\s+(a\s+|new\s+)?note|new\s+note)\s*(about|on|for|that says|saying|:)?\s*`)

	datePhraseStrip = regexp.MustCompile(`(?i)\s*\b(by|on|before|due|due on|for)?\s*\b(today|tomorrow|next week|next month|monday|tuesday|wednesday|thursday|friday|saturday|sunday|(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?)\b`)
	priorityStrip   = regexp.MustCompile(`(?i)\s*\b(with|as|at)?\s*\b(high|urgent|important|critical|low|minor|medium)\s+priority\b`)
	categoryStrip   = regexp.MustCompile(`(?i)\s*\b(in|to|under)\s+(the\s+)?(work|personal|health|learning|finance)\s+(category|list)\b`)
)

// IsCancellation reports whether the transcript matches a cancellation
// phrase. The state machine uses this as its safety net independently of any
// resolver output.
func IsCancellation(transcript string) bool {
	text := strings.ToLower(strings.TrimSpace(transcript))
	text = strings.Trim(text, ".!,")
	for _, phrase := range cancelPhrases {
		if text == phrase || strings.HasPrefix(text, phrase+" ") {
			return true
		}
	}
	return false
}

// DetectPriority scans for urgency keywords. Defaults to medium.
func DetectPriority(transcript string) string {
	words := strings.Fields(strings.ToLower(transcript))
	for _, w := range words {
		for _, kw := range highPriorityWords {
			if w == kw {
				return voice.PriorityHigh
			}
		}
	}
	for _, w := range words {
		for _, kw := range lowPriorityWords {
			if w == kw {
				return voice.PriorityLow
			}
		}
	}
	return voice.PriorityMedium
}

// DetectCategory scans for category keywords. Empty string when none match.
func DetectCategory(transcript string) string {
	words := strings.Fields(strings.ToLower(transcript))
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?")] = true
	}
	// Fixed check order so overlapping keywords resolve deterministically.
	for _, cat := range []string{"Work", "Personal", "Health", "Learning", "Finance"} {
		for _, kw := range categoryKeywords[cat] {
			if wordSet[kw] {
				return cat
			}
		}
	}
	return ""
}

// ParseTask extracts a best-effort task record from a transcript: the title
// is the transcript with trigger, date, priority and category phrases
// stripped; the remaining fields come from the fixed vocabularies.
func (f *Fallback) ParseTask(transcript string) voice.ParsedTask {
	now := f.now()
	dueDate, _ := dates.Resolve(transcript, now)

	title := taskTitle(transcript)
	if title == "" {
		title = strings.TrimSpace(transcript)
	}

	return voice.ParsedTask{
		Title:    title,
		DueDate:  dueDate,
		Category: DetectCategory(transcript),
		Priority: DetectPriority(transcript),
	}
}

// taskTitle strips trigger, date, priority and category phrases from a task
// transcript. Empty when nothing but those phrases was said.
func taskTitle(transcript string) string {
	title := strings.TrimSpace(transcript)
	title = taskPrefixStrip.ReplaceAllString(title, "")
	title = priorityStrip.ReplaceAllString(title, "")
	title = categoryStrip.ReplaceAllString(title, "")
	title = datePhraseStrip.ReplaceAllString(title, "")
	title = strings.TrimSpace(strings.Trim(title, ".,!?"))
	return strings.TrimSpace(strings.TrimPrefix(title, "to "))
}

// ParseNoteDraft mirrors the original voice-note parse behavior: the whole
// transcript becomes the title of a draft note with empty content, for the
// UI to fill in.
func (f *Fallback) ParseNoteDraft(transcript string) voice.ParsedNote {
	return voice.ParsedNote{
		Title:   strings.TrimSpace(transcript),
		Content: "",
		Tags:    "",
	}
}

// noteContent strips the note trigger phrase; what remains is the content.
func noteContent(transcript string) string {
	content := notePrefixStrip.ReplaceAllString(strings.TrimSpace(transcript), "")
	return strings.TrimSpace(strings.Trim(content, ".,!?"))
}

// searchQuery strips a search trigger prefix; the remainder is the query.
// With no recognizable trigger the whole transcript is the query.
func searchQuery(transcript string) string {
	text := strings.TrimSpace(transcript)
	lower := strings.ToLower(text)
	for _, trigger := range searchTriggers {
		if strings.HasPrefix(lower, trigger+" ") {
			return strings.TrimSpace(text[len(trigger)+1:])
		}
	}
	return text
}

// matchNavigation returns the target URL and page name for a navigation
// command, or ok=false when the transcript is not navigational.
func matchNavigation(transcript string) (url, name string, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(transcript))
	triggered := false
	for _, trigger := range navTriggers {
		if strings.HasPrefix(lower, trigger+" ") {
			triggered = true
			break
		}
	}
	if !triggered {
		return "", "", false
	}
	for _, page := range navPages {
		for _, kw := range page.Keywords {
			if strings.Contains(lower, kw) {
				return page.URL, page.Name, true
			}
		}
	}
	return "", "", false
}

// Resolve classifies a transcript without oracle involvement, honoring the
// current conversation state.
func (f *Fallback) Resolve(transcript string, state voice.ConversationState) *voice.CommandResult {
	text := strings.TrimSpace(transcript)
	if IsCancellation(text) {
		return &voice.CommandResult{
			Success: true,
			Message: "Okay, cancelled.",
			Action:  voice.ActionResetState,
		}
	}

	switch state {
	case voice.StateAwaitingTaskDetails:
		return f.continueTask(text)
	case voice.StateAwaitingNoteContent:
		return f.continueNote(text)
	case voice.StateAwaitingSearchQuery:
		return f.finishSearch(searchQuery(text))
	}

	if url, name, ok := matchNavigation(text); ok {
		return &voice.CommandResult{
			Success:    true,
			Message:    "Going to " + name + ".",
			Action:     voice.ActionNavigate,
			Parameters: map[string]interface{}{"url": url},
		}
	}

	lower := strings.ToLower(text)
	for _, trigger := range searchTriggers {
		if strings.HasPrefix(lower, trigger+" ") {
			return f.finishSearch(searchQuery(text))
		}
	}

	if taskTriggerPattern.MatchString(text) {
		return f.continueTask(text)
	}

	if noteTriggerPattern.MatchString(text) {
		content := noteContent(text)
		if content == "" {
			return askForState(voice.StateAwaitingNoteContent,
				"Sure, what should the note say?",
				[]string{"Take a note about the team meeting", "Note that the deadline moved to Friday"})
		}
		return finalizeNote(content)
	}

	return &voice.CommandResult{
		Success: true,
		Message: "I didn't catch a command there. You can create tasks and notes, search, or navigate.",
		Action:  voice.ActionNone,
		Suggestions: []string{
			"Go to tasks",
			"Create a task to finish the report by Friday",
			"Take a note about the meeting",
			"Search for groceries",
		},
	}
}

func (f *Fallback) continueTask(text string) *voice.CommandResult {
	task := f.ParseTask(text)
	missingTitle := taskTitle(text) == "" || taskTriggerPattern.MatchString(task.Title)
	if missingTitle && task.DueDate == "" {
		return askForState(voice.StateAwaitingTaskDetails,
			"Sure, what is the task and when is it due?",
			[]string{"Finish the report by Friday", "Buy groceries tomorrow"})
	}
	if missingTitle {
		return askForState(voice.StateAwaitingTaskDetails,
			"Got the date. What should the task be called?",
			[]string{"Finish the report", "Call the dentist"})
	}
	if task.DueDate == "" {
		return askForState(voice.StateAwaitingTaskDetails,
			"When is \""+task.Title+"\" due?",
			[]string{"Tomorrow", "Next week", "Friday"})
	}
	return &voice.CommandResult{
		Success:    true,
		Message:    "Created a task \"" + task.Title + "\" due " + task.DueDate + ". Opening the task dialog.",
		Action:     voice.ActionCreateTaskFinalized,
		Parameters: voice.TaskParameters(task),
	}
}

func (f *Fallback) continueNote(text string) *voice.CommandResult {
	content := noteContent(text)
	if content == "" {
		return askForState(voice.StateAwaitingNoteContent,
			"What should the note say?",
			[]string{"The meeting moved to Thursday", "Ideas for the next sprint"})
	}
	return finalizeNote(content)
}

func (f *Fallback) finishSearch(query string) *voice.CommandResult {
	if query == "" {
		return askForState(voice.StateAwaitingSearchQuery,
			"What would you like to search for?",
			[]string{"High priority work tasks", "Meeting notes"})
	}
	return &voice.CommandResult{
		Success:    true,
		Message:    "Searching for " + query + ".",
		Action:     voice.ActionSearch,
		Parameters: map[string]interface{}{"query": query},
	}
}

func finalizeNote(content string) *voice.CommandResult {
	note := voice.ParsedNote{
		Title:   noteTitle(content),
		Content: content,
	}
	return &voice.CommandResult{
		Success:    true,
		Message:    "Noted. Opening the note dialog.",
		Action:     voice.ActionCreateNoteFinalized,
		Parameters: voice.NoteParameters(note),
	}
}

// noteTitle derives a short title from note content (first eight words).
func noteTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

func askForState(state voice.ConversationState, message string, suggestions []string) *voice.CommandResult {
	return &voice.CommandResult{
		Success:     true,
		Message:     message,
		Action:      voice.ActionSetState,
		Parameters:  map[string]interface{}{"state": string(state)},
		Suggestions: suggestions,
	}
}

package intent

import (
	"fmt"
	"strings"

	"voicepad-be/pkg/voice"
)

func buildPrompt(transcript string, state voice.ConversationState, meta voice.ContextMetadata) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are the command interpreter of a voice-controlled task and notes app.\n")
	prompt.WriteString("You do NOT chat. You turn one spoken transcript into ONE structured command.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<context>\n")
	prompt.WriteString(fmt.Sprintf("CURRENT_PAGE: %s\n", meta.CurrentPath))
	prompt.WriteString(fmt.Sprintf("NOW: %s (use this to resolve relative dates like \"tomorrow\" or \"Friday\")\n", meta.Timestamp))
	prompt.WriteString("</context>\n\n")

	if state != voice.StateIdle {
		prompt.WriteString("<pending_conversation>\n")
		switch state {
		case voice.StateAwaitingTaskDetails:
			prompt.WriteString("The user already asked to create a TASK and was asked for the missing details.\n")
			prompt.WriteString("Interpret this transcript as supplying the task title and/or due date.\n")
		case voice.StateAwaitingNoteContent:
			prompt.WriteString("The user already asked to create a NOTE and was asked for its content.\n")
			prompt.WriteString("Interpret this transcript as the note content.\n")
		case voice.StateAwaitingSearchQuery:
			prompt.WriteString("The user already asked to SEARCH and was asked what to search for.\n")
			prompt.WriteString("Interpret this transcript as the search query.\n")
		}
		prompt.WriteString("Only abandon the pending intent if the transcript clearly cancels")
		prompt.WriteString(" (\"cancel\", \"never mind\") or clearly starts a new top-level command")
		prompt.WriteString(" (\"go to <page>\").\n")
		prompt.WriteString("</pending_conversation>\n\n")
	}

	prompt.WriteString("<transcript>\n")
	prompt.WriteString(transcript)
	prompt.WriteString("\n</transcript>\n\n")

	prompt.WriteString("<actions>\n")
	prompt.WriteString("navigate: go to a page. parameters: {\"url\": \"/tasks\"|\"/notes\"|\"/calendar\"|\"/search\"|\"/account\"|\"/\"}\n")
	prompt.WriteString("search: run a search. parameters: {\"query\": \"...\"} (query must be non-empty)\n")
	prompt.WriteString("create_task_finalized: ONLY when BOTH a title AND a resolvable due date are present.\n")
	prompt.WriteString("  parameters: {\"title\", \"description\", \"dueDate\" (YYYY-MM-DD), \"category\" (Work|Personal|Health|Learning|Finance or \"\"), \"priority\" (low|medium|high)}\n")
	prompt.WriteString("create_note_finalized: ONLY when the note has non-trivial content.\n")
	prompt.WriteString("  parameters: {\"title\", \"content\", \"tags\"}\n")
	prompt.WriteString("set_state: more input is needed. parameters: {\"state\": \"awaiting_task_details\"|\"awaiting_note_content\"|\"awaiting_search_query\"}.\n")
	prompt.WriteString("  The message MUST ask for exactly the missing field(s).\n")
	prompt.WriteString("reset_state: the user cancelled the pending conversation.\n")
	prompt.WriteString("none: the transcript is not a command. Suggest example phrases.\n")
	prompt.WriteString("</actions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"success\": true,\n")
	prompt.WriteString("  \"message\": \"short sentence to speak back to the user\",\n")
	prompt.WriteString("  \"action\": \"navigate|search|set_state|reset_state|create_task_finalized|create_note_finalized|none\",\n")
	prompt.WriteString("  \"parameters\": { },\n")
	prompt.WriteString("  \"suggestions\": [\"optional follow-up phrases\"]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// extractJSON pulls the outermost JSON object out of a completion that may
// wrap it in prose or markdown fences.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"voicepad-be/pkg/voice"
	"voicepad-be/pkg/voice/dispatch"
	"voicepad-be/pkg/voice/engine"
	"voicepad-be/pkg/voice/intent"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Interactive console for the voice command loop: type what you would say,
// see what the assistant would do. Runs fallback-only, no server needed.

type consoleSpeaker struct{}

func (consoleSpeaker) Speak(text string) {
	color.Cyan("🔊 %s", text)
}

func (consoleSpeaker) Stop() {}

type consoleNavigator struct{}

func (consoleNavigator) Navigate(url string) {
	color.Yellow("→ navigate %s", url)
}

func (consoleNavigator) Search(query string) {
	color.Yellow("→ search %q", query)
}

func main() {
	color.New(color.Bold).Println("=== Voice Assistant Simulation ===")
	fmt.Println("Type a command and press Enter. 'exit' quits, 'off' deactivates, 'on' activates.")
	fmt.Println()

	logger := zap.NewNop()
	mailbox := dispatch.NewMailbox()
	speaker := consoleSpeaker{}
	dispatcher := dispatch.NewDispatcher(mailbox, speaker, consoleNavigator{}, nil, logger)
	resolver := intent.NewResolver(nil, logger, time.Now)

	eng := engine.New(engine.Config{
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Speaker:    speaker,
		Logger:     logger,
	})
	eng.Activate()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgGreen).Printf("[%s] > ", eng.State())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "quit":
			eng.Deactivate()
			return
		case "off":
			eng.Deactivate()
			continue
		case "on":
			eng.Activate()
			continue
		}

		snap := eng.Command(line)
		printResult(snap.LastResult)

		if task, note, kind := mailbox.Consume(); kind != dispatch.DialogNone {
			switch kind {
			case dispatch.DialogTask:
				color.Magenta("📋 task dialog: title=%q due=%s category=%s priority=%s",
					task.Title, task.DueDate, task.Category, task.Priority)
			case dispatch.DialogNote:
				color.Magenta("📝 note dialog: title=%q content=%q", note.Title, note.Content)
			}
		}
	}
}

func printResult(result *voice.CommandResult) {
	if result == nil {
		return
	}
	status := color.GreenString("ok")
	if !result.Success {
		status = color.RedString("failed")
	}
	fmt.Printf("   [%s] action=%s\n", status, result.Action)
	if len(result.Suggestions) > 0 {
		fmt.Printf("   suggestions: %s\n", strings.Join(result.Suggestions, " | "))
	}
}

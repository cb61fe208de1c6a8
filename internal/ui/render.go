package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
)

const (
	noModelsLabel = "no models available"
	helpText      = `Commands:
/help    show this help
/models  reload the model list
/clear   clear the conversation
/voice   dictate a question
/debug   toggle the debug console
/bye     exit

Enter sends, Esc stops a streaming answer, Tab moves to the model selector.`
)

// renderTranscript formats the conversation with tview colour tags. Text from
// the user and the backend is escaped so it cannot inject tags.
func renderTranscript(transcript chat.Transcript) string {
	var b strings.Builder
	for i, turn := range transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[red::b]You:[-::-]\n%s\n\n", tview.Escape(turn.Question))
		b.WriteString("[green::b]Bot:[-::-]\n")

		switch turn.State {
		case chat.TurnPending:
			b.WriteString("[gray::i]thinking...[-::-]\n")
		case chat.TurnFailed:
			fmt.Fprintf(&b, "[red]%s[-]\n", tview.Escape(turn.Answer))
		case chat.TurnEmpty:
			fmt.Fprintf(&b, "[yellow]%s[-]\n", tview.Escape(turn.Answer))
		case chat.TurnCancelled:
			fmt.Fprintf(&b, "%s\n[gray::i](stopped)[-::-]\n", tview.Escape(turn.Answer))
		case chat.TurnStreaming:
			fmt.Fprintf(&b, "%s[gray]▍[-]\n", tview.Escape(turn.Answer))
		default:
			fmt.Fprintf(&b, "%s\n", tview.Escape(turn.Answer))
		}
	}
	return b.String()
}

type command int

const (
	commandNone command = iota
	commandHelp
	commandBye
	commandDebug
	commandClear
	commandModels
	commandVoice
	commandUnknown
)

// parseCommand recognises slash commands. Anything that does not start with a
// slash is a question.
func parseCommand(input string) command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return commandNone
	}
	switch strings.ToLower(input) {
	case "/help":
		return commandHelp
	case "/bye", "/quit", "/exit":
		return commandBye
	case "/debug":
		return commandDebug
	case "/clear":
		return commandClear
	case "/models":
		return commandModels
	case "/voice":
		return commandVoice
	default:
		return commandUnknown
	}
}

// selectorOptions returns the dropdown entries and the initially selected
// index for a directory.
func selectorOptions(choices []string, defaultChoice string) ([]string, int) {
	if len(choices) == 0 {
		return []string{noModelsLabel}, 0
	}
	for i, c := range choices {
		if c == defaultChoice {
			return choices, i
		}
	}
	return choices, -1
}

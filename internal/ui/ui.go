package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
)

// Deps are the collaborators the UI drives.
type Deps struct {
	Session *chat.Session
	// FetchModels loads the model directory; it never fails, an empty
	// directory disables the selector.
	FetchModels func(ctx context.Context) client.Directory
	// Dictate records and transcribes a question. Nil disables /voice.
	Dictate func(ctx context.Context) (string, error)
}

type App struct {
	app          *tview.Application
	pages        *tview.Pages
	mainFlex     *tview.Flex
	modelDrop    *tview.DropDown
	textView     *tview.TextView
	statusView   *tview.TextView
	textArea     *tview.TextArea
	debugConsole *tview.TextView
	debugShown   bool

	deps        Deps
	localLogger *logger.Logger
}

// New builds the widgets. The debug console exists from the start so logging
// can be pointed at it before Run.
func New() *App {
	a := &App{app: tview.NewApplication()}
	a.app.EnablePaste(true)
	a.app.EnableMouse(true)

	a.debugConsole = a.initDebugConsole()
	a.textView = initChatViewer()
	a.statusView = tview.NewTextView().SetDynamicColors(true)
	a.textArea = initChatInput()
	a.modelDrop = tview.NewDropDown().SetLabel("Model (source:name): ")
	return a
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Validated Patterns RAG Chat").SetBorder(true)
	textView.SetScrollable(true)
	return textView
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea().SetPlaceholder("How are secrets managed in Validated Patterns?")
	textArea.SetTitle("Your question").SetBorder(true)
	return textArea
}

func (a *App) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			a.app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

func (a *App) DebugConsole() *tview.TextView {
	return a.debugConsole
}

// Run shows the UI until the user quits. dev opens the debug console at start.
func (a *App) Run(deps Deps, dev bool) error {
	a.deps = deps
	a.localLogger = logger.NewLogger("views")

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.modelDrop, 1, 0, false).
		AddItem(a.textView, 0, 1, false).
		AddItem(a.statusView, 1, 0, false).
		AddItem(a.textArea, 6, 0, true)
	a.mainFlex = tview.NewFlex().
		AddItem(subFlex, 0, 2, true)

	if dev {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
		a.debugShown = true
	}

	a.pages = tview.NewPages().AddPage("main", a.mainFlex, true, true)

	a.setInputCapture()
	a.setDirectory(client.Directory{})
	a.setStatus("[gray]Loading models...[-]")
	go a.refreshModels()

	return a.app.SetRoot(a.pages, true).SetFocus(a.textArea).Run()
}

func (a *App) setInputCapture() {
	a.textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyTab:
			a.app.SetFocus(a.textArea)
			return nil
		}
		return event
	})

	a.modelDrop.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			a.app.SetFocus(a.textArea)
			return nil
		}
		return event
	})

	a.textArea.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			a.app.SetFocus(a.modelDrop)
			return nil
		case tcell.KeyESC:
			if a.deps.Session.Busy() {
				a.deps.Session.Cancel()
				a.setStatus("[yellow]Stopped.[-]")
			} else if a.textView.GetText(false) != "" {
				a.app.SetFocus(a.textView)
			}
			return nil
		case tcell.KeyEnter:
			if event.Modifiers()&tcell.ModAlt != 0 {
				return event
			}
			content := a.textArea.GetText()
			a.textArea.SetText("", true)
			a.handleInput(content)
			return nil
		}
		return event
	})
}

func (a *App) handleInput(content string) {
	switch parseCommand(content) {
	case commandNone:
		a.submit(content)
	case commandHelp:
		a.showHelp()
	case commandBye:
		a.quitApp()
	case commandDebug:
		a.toggleDebugConsole()
	case commandClear:
		a.deps.Session.Clear()
		a.textView.Clear()
		a.setStatus("[gray]Conversation cleared.[-]")
	case commandModels:
		a.setStatus("[gray]Loading models...[-]")
		go a.refreshModels()
	case commandVoice:
		a.voiceRecognition()
	case commandUnknown:
		a.setStatus(fmt.Sprintf("[yellow]Unknown command %s, try /help[-]", tview.Escape(content)))
	}
}

func (a *App) submit(question string) {
	if a.deps.Session.Busy() {
		a.setStatus("[yellow]Wait for the current answer or press Esc to stop it.[-]")
		return
	}

	a.textArea.SetDisabled(true)
	a.setStatus("")
	go func() {
		err := a.deps.Session.Submit(context.Background(), question, a.render)
		switch {
		case err == nil:
		case errors.Is(err, chat.ErrEmptyQuestion), errors.Is(err, chat.ErrTurnInFlight):
		case errors.Is(err, context.Canceled):
			a.localLogger.Info("Answer stopped by user")
		default:
			a.localLogger.Error("Turn failed: ", err)
		}

		a.app.QueueUpdateDraw(func() {
			a.textArea.SetDisabled(false)
			a.app.SetFocus(a.textArea)
		})
	}()
}

// render is called from the streaming goroutine with a copy of the transcript.
func (a *App) render(transcript chat.Transcript) {
	text := renderTranscript(transcript)
	a.app.QueueUpdateDraw(func() {
		a.textView.SetText(text)
		a.textView.ScrollToEnd()
	})
}

func (a *App) refreshModels() {
	dir := a.deps.FetchModels(context.Background())
	a.app.QueueUpdateDraw(func() {
		a.setDirectory(dir)
		if dir.Empty() {
			a.setStatus("[red]Could not load models from the backend. Use /models to retry.[-]")
		} else {
			a.setStatus(fmt.Sprintf("[gray]%d models available.[-]", len(dir.Choices)))
		}
	})
}

// setDirectory fills the selector. It must run on the UI goroutine.
func (a *App) setDirectory(dir client.Directory) {
	options, index := selectorOptions(dir.Choices, dir.Default)
	if dir.Empty() {
		a.deps.Session.SetModel("")
		a.modelDrop.SetOptions(options, nil)
		a.modelDrop.SetCurrentOption(0)
		a.modelDrop.SetDisabled(true)
		return
	}

	a.modelDrop.SetDisabled(false)
	a.modelDrop.SetOptions(options, func(text string, _ int) {
		if text == a.deps.Session.Model() {
			return
		}
		a.deps.Session.SetModel(text)
		a.localLogger.Info("Selected: ", text)
		a.setStatus("[gray]Using model " + tview.Escape(text) + "[-]")
	})

	current := a.deps.Session.Model()
	for i, option := range options {
		if option == current {
			index = i
		}
	}
	if index < 0 {
		a.deps.Session.SetModel("")
		return
	}
	a.modelDrop.SetCurrentOption(index)
}

func (a *App) setStatus(text string) {
	a.statusView.SetText(text)
}

func (a *App) voiceRecognition() {
	if a.deps.Dictate == nil {
		a.setStatus("[yellow]API_KEY is required to enable voice recognition.[-]")
		a.localLogger.Warn("API_KEY is not set, voice recognition is disabled")
		return
	}
	if a.deps.Session.Busy() {
		a.setStatus("[yellow]Wait for the current answer first.[-]")
		return
	}

	a.textArea.SetDisabled(true)
	a.setStatus("[green]Listening...[-]")
	a.localLogger.Info("Voice recogniser Started")

	go func() {
		text, err := a.deps.Dictate(context.Background())
		a.app.QueueUpdateDraw(func() {
			a.textArea.SetDisabled(false)
			if err != nil {
				a.localLogger.Error("Failed to process voice: ", err)
				a.setStatus("[red]Voice input failed: " + tview.Escape(err.Error()) + "[-]")
				return
			}
			a.localLogger.Info("Voice recognizer Completed")
			a.submit(text)
		})
	}()
}

func (a *App) showHelp() {
	modal := tview.NewModal().
		SetText(helpText).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) {
			a.pages.RemovePage("help")
			a.app.SetFocus(a.textArea)
		})
	a.pages.AddPage("help", modal, true, true)
}

func (a *App) toggleDebugConsole() {
	if a.debugShown {
		a.mainFlex.RemoveItem(a.debugConsole)
		a.setStatus("[gray]Debug console disabled[-]")
	} else {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
		a.setStatus("[gray]Debug console enabled[-]")
	}
	a.debugShown = !a.debugShown
}

func (a *App) quitApp() {
	a.deps.Session.Cancel()
	a.localLogger.Info("Shutting down gracefully.")
	a.app.Stop()
}

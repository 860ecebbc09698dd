package ui

import (
	"fmt"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/fenilsonani/cache-cleaner/internal/ui/styles"
)

// Summary is what the final view shows once an operation completes
type Summary struct {
	Headline   string
	Categories []engine.Category
	TotalSize  int64
	TotalItems int
	Cancelled  bool
	Note       string
}

// ScanSummary builds the final view of a scan
func ScanSummary(report *engine.ScanReport, top int) Summary {
	s := Summary{
		Headline:   fmt.Sprintf("Cache older than %d days", report.Days),
		Categories: report.Top(top),
		TotalSize:  report.TotalSize,
		TotalItems: report.TotalItems,
		Cancelled:  report.Cancelled,
	}
	if rest := len(report.Categories) - len(s.Categories); rest > 0 {
		s.Note = fmt.Sprintf("... and %d more", rest)
	}
	return s
}

// CleanSummary builds the final view of a clean
func CleanSummary(result *engine.CleanResult) Summary {
	headline := "Cleaned"
	if result.DryRun {
		headline = "Would clean"
	}
	s := Summary{
		Headline:   headline,
		Categories: result.Categories,
		TotalSize:  result.FreedBytes,
		TotalItems: result.Deleted,
		Cancelled:  result.Cancelled,
	}
	if n := len(result.Failed); n > 0 {
		s.Note = fmt.Sprintf("%d items could not be deleted", n)
	}
	return s
}

type eventMsg progress.Event

type eventsClosedMsg struct{}

type doneMsg struct{}

// Model renders a running operation: a spinner with the current category
// and a bar of categories finished out of total
type Model struct {
	title   string
	events  <-chan progress.Event
	done    <-chan struct{}
	cancel  func()
	finish  func() Summary
	spinner spinner.Model
	bar     bprogress.Model

	current    progress.Event
	started    time.Time
	cancelling bool
	finished   bool
	summary    Summary
}

// NewModel creates a model that follows events until done is closed.
// cancel is called on ctrl+c and finish builds the final view.
func NewModel(title string, events <-chan progress.Event, done <-chan struct{}, cancel func(), finish func() Summary) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &Model{
		title:   title,
		events:  events,
		done:    done,
		cancel:  cancel,
		finish:  finish,
		spinner: s,
		bar:     bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
		started: time.Now(),
	}
}

// NewScanModel follows a scan operation
func NewScanModel(op *engine.Operation[*engine.ScanReport], cancel func(), top int) *Model {
	return NewModel("🔍 Scanning caches", op.Events(), op.Done(), cancel, func() Summary {
		return ScanSummary(op.Result(), top)
	})
}

// NewCleanModel follows a clean operation
func NewCleanModel(op *engine.Operation[*engine.CleanResult], cancel func()) *Model {
	return NewModel("🧹 Cleaning caches", op.Events(), op.Done(), cancel, func() Summary {
		return CleanSummary(op.Result())
	})
}

// Init starts the spinner and the event pump
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.finished && !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
			if m.finished {
				return m, tea.Quit
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		if w := msg.Width - 4; w > 10 && w < 60 {
			m.bar.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.current = progress.Event(msg)
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, waitForDone(m.done)

	case doneMsg:
		m.finished = true
		m.summary = m.finish()
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(m.title))
	b.WriteString("\n")

	if m.finished {
		m.summaryView(&b)
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.cancelling {
		b.WriteString(styles.WarningStyle.Render("Cancelling..."))
	} else {
		b.WriteString(progress.FormatEvent(m.current))
	}
	b.WriteString(" ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", progress.FormatDuration(time.Since(m.started)))))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.current.Fraction()))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to cancel"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) summaryView(b *strings.Builder) {
	s := m.summary
	if s.Cancelled {
		b.WriteString(styles.WarningStyle.Render("✗ Cancelled"))
	} else {
		b.WriteString(styles.SuccessStyle.Render("✓ " + s.Headline))
	}
	b.WriteString("\n\n")

	if s.TotalSize <= 0 {
		b.WriteString("No old cache found\n")
		return
	}

	for _, c := range s.Categories {
		fmt.Fprintf(b, "  %s %s\n",
			styles.CategoryStyle.Render(fmt.Sprintf("%-18s", c.Name)),
			styles.FileSizeStyle.Render(progress.FormatBytes(c.Size)))
	}
	if s.Note != "" {
		fmt.Fprintf(b, "  %s\n", styles.DimStyle.Render(s.Note))
	}

	b.WriteString("\n")
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("Total: %s (%d items)",
		progress.FormatBytes(s.TotalSize), s.TotalItems)))
	b.WriteString("\n")
}

// Finished reports whether the operation completed
func (m *Model) Finished() bool {
	return m.finished
}

// Summary returns the final view data, valid once Finished
func (m *Model) Summary() Summary {
	return m.summary
}

func waitForEvent(events <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

// Run drives m until the operation completes
func Run(m *Model, opts ...tea.ProgramOption) error {
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("error running progress view: %w", err)
	}
	return nil
}

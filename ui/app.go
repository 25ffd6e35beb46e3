package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"goc-doc-qa/llm"
	"goc-doc-qa/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Width(80)

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5C5C5C"))

	docStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6BCB77")).
			PaddingLeft(2)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1).
			PaddingLeft(2)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			PaddingLeft(2).
			Width(80)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			MarginTop(1).
			PaddingLeft(2)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD93D")).
			MarginTop(1).
			PaddingLeft(2)
)

const (
	title       = "📄 Document Question Answering"
	description = "문서(.txt 또는 .md)를 불러오고 질문하세요. AI 모델이 문서 안에서 답을 찾아 실시간으로 보여줍니다. " +
		"Notion 페이지는 notion:<page-id> 로 불러올 수 있습니다."
	generating  = "⏳ Generating answer..."
)

// Asker 문서와 질문으로 스트리밍 답변을 여는 인터페이스
type Asker interface {
	Ask(ctx context.Context, doc *models.Document, question string) (llm.Stream, error)
}

// Opener 파일 경로나 notion:<id> 입력을 Document로 불러오는 함수
type Opener func(ctx context.Context, input string) (*models.Document, error)

type focus int

const (
	focusDocument focus = iota
	focusQuestion
)

// Model TUI 애플리케이션 모델
type Model struct {
	ctx    context.Context
	asker  Asker
	opener Opener

	docInput string
	question string
	focus    focus

	doc       *models.Document
	asked     string
	answer    string
	err       error
	opening   bool
	streaming bool
	stream    llm.Stream

	quitting bool
	width    int
	height   int
}

// NewModel 새로운 TUI 모델을 생성합니다
func NewModel(ctx context.Context, asker Asker, opener Opener) *Model {
	return &Model{
		ctx:    ctx,
		asker:  asker,
		opener: opener,
		focus:  focusDocument,
	}
}

// Preload 시작 시 불러올 문서 입력을 설정합니다
func (m *Model) Preload(input string) {
	m.docInput = strings.TrimSpace(input)
}

// Init bubbletea 초기화 함수
func (m *Model) Init() tea.Cmd {
	if m.docInput != "" {
		m.opening = true
		return m.open(m.docInput)
	}
	return nil
}

// QuestionEnabled 문서가 불러와져 있을 때만 질문 입력이 가능합니다
func (m *Model) QuestionEnabled() bool {
	return !m.doc.Empty()
}

// Update bubbletea 업데이트 함수
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case documentMsg:
		m.opening = false
		if msg.err != nil {
			m.doc = nil
			m.err = msg.err
			m.focus = focusDocument
			return m, nil
		}
		m.doc = msg.doc
		m.err = nil
		m.answer = ""
		if m.QuestionEnabled() {
			m.focus = focusQuestion
		} else {
			m.err = models.ErrNoDocument
		}
		return m, nil

	case streamOpenedMsg:
		if msg.err != nil {
			m.streaming = false
			m.err = msg.err
			return m, nil
		}
		m.stream = msg.stream
		return m, next(msg.stream)

	case fragmentMsg:
		m.answer += msg.text
		return m, next(m.stream)

	case streamDoneMsg:
		m.finish(nil)
		return m, nil

	case streamErrMsg:
		// 이미 표시된 답변은 그대로 둡니다
		m.finish(msg.err)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		if m.stream != nil {
			m.stream.Close()
		}
		return m, tea.Quit
	}

	// 요청 처리 중에는 입력을 받지 않습니다
	if m.streaming || m.opening {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab, tea.KeyShiftTab:
		if m.focus == focusDocument && m.QuestionEnabled() {
			m.focus = focusQuestion
		} else {
			m.focus = focusDocument
		}
		return m, nil

	case tea.KeyEnter:
		if m.focus == focusDocument {
			input := strings.TrimSpace(m.docInput)
			if input == "" {
				return m, nil
			}
			m.opening = true
			m.err = nil
			return m, m.open(input)
		}
		if strings.TrimSpace(m.question) == "" {
			return m, nil
		}
		return m, m.submit()

	case tea.KeyBackspace:
		field := m.field()
		if r := []rune(*field); len(r) > 0 {
			*field = string(r[:len(r)-1])
		}
		return m, nil

	case tea.KeySpace:
		*m.field() += " "
		return m, nil

	case tea.KeyRunes:
		*m.field() += string(msg.Runes)
		return m, nil
	}

	return m, nil
}

// field 현재 포커스된 입력 필드
func (m *Model) field() *string {
	if m.focus == focusQuestion && m.QuestionEnabled() {
		return &m.question
	}
	return &m.docInput
}

func (m *Model) submit() tea.Cmd {
	m.streaming = true
	m.asked = m.question
	m.answer = ""
	m.err = nil

	doc, question, ctx := m.doc, m.question, m.ctx
	return func() tea.Msg {
		stream, err := m.asker.Ask(ctx, doc, question)
		return streamOpenedMsg{stream: stream, err: err}
	}
}

func (m *Model) finish(err error) {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.streaming = false
	m.err = err
	m.question = ""
}

func (m *Model) open(input string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		doc, err := m.opener(ctx, input)
		return documentMsg{doc: doc, err: err}
	}
}

// View bubbletea 뷰 함수
func (m *Model) View() string {
	if m.quitting {
		return "\n👋 안녕히 가세요!\n\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(descStyle.Render(description))
	b.WriteString("\n\n")

	// 문서 입력
	b.WriteString(labelStyle.Render("문서 경로 (Enter: 불러오기, Tab: 이동, Esc: 종료)"))
	b.WriteString("\n> " + m.docInput)
	if m.focus == focusDocument && !m.busy() {
		b.WriteString("_")
	}
	b.WriteString("\n")
	if m.opening {
		b.WriteString(loadingStyle.Render("📂 문서를 불러오는 중..."))
		b.WriteString("\n")
	} else if !m.doc.Empty() {
		b.WriteString(docStyle.Render(fmt.Sprintf("✅ %s (%d bytes)", m.doc.Name, len(m.doc.Content))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// 질문 입력 (문서가 없으면 비활성)
	if m.QuestionEnabled() {
		b.WriteString(labelStyle.Render("문서에 대해 질문하세요 (Enter: 질문)"))
		b.WriteString("\n> " + m.question)
		if m.focus == focusQuestion && !m.busy() {
			b.WriteString("_")
		}
	} else {
		b.WriteString(disabledStyle.Render("문서에 대해 질문하세요 (문서를 먼저 불러오세요)"))
		b.WriteString("\n")
		b.WriteString(disabledStyle.Render("> 예: 문서를 짧게 요약해 주세요"))
	}
	b.WriteString("\n")

	if m.asked != "" && (m.streaming || m.answer != "") {
		b.WriteString("\n")
		b.WriteString(questionStyle.Render("💬 " + m.asked))
		b.WriteString("\n")
	}

	if m.streaming && m.answer == "" {
		b.WriteString(loadingStyle.Render(generating))
		b.WriteString("\n")
	}

	if m.answer != "" {
		for _, line := range strings.Split(m.answer, "\n") {
			b.WriteString(answerStyle.Render(line))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(ErrorBanner(m.err)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) busy() bool {
	return m.streaming || m.opening
}

// Answer 지금까지 표시된 답변
func (m *Model) Answer() string {
	return m.answer
}

// Err 마지막 오류
func (m *Model) Err() error {
	return m.err
}

// ErrorBanner 사용자에게 보여줄 오류 문구
func ErrorBanner(err error) string {
	return fmt.Sprintf("🚨 An error occurred: %v", err)
}

type documentMsg struct {
	doc *models.Document
	err error
}

type streamOpenedMsg struct {
	stream llm.Stream
	err    error
}

type fragmentMsg struct {
	text string
}

type streamDoneMsg struct{}

type streamErrMsg struct {
	err error
}

// next 스트림에서 다음 조각 하나를 읽는 커맨드
func next(stream llm.Stream) tea.Cmd {
	return func() tea.Msg {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return streamDoneMsg{}
		}
		if err != nil {
			return streamErrMsg{err: err}
		}
		return fragmentMsg{text: frag}
	}
}

// Run TUI 애플리케이션을 실행합니다
func Run(ctx context.Context, asker Asker, opener Opener, preload string) error {
	model := NewModel(ctx, asker, opener)
	model.Preload(preload)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

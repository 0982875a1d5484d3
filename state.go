package runblock

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// CopyResetDelay is how long the copy confirmation stays visible.
const CopyResetDelay = 2 * time.Second

// Block actions accepted by HandleAction.
const (
	ActionToggle = "toggle"
	ActionCopy   = "copy"
)

// Clipboard receives copied snippets.
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(text string) error

// WriteAll calls f(text).
func (f ClipboardFunc) WriteAll(text string) error {
	return f(text)
}

var discardClipboard = ClipboardFunc(func(string) error { return nil })

// Timer is a pending deferred callback.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules callbacks on real time.
var SystemClock Clock = systemClock{}

// View is a snapshot of a block's UI state, ready to render or send.
type View struct {
	BlockID        string   `json:"blockID"`
	Language       string   `json:"language"`
	Runnable       bool     `json:"runnable"`
	PreviewVisible bool     `json:"previewVisible"`
	Copied         bool     `json:"copied"`
	ToggleLabel    string   `json:"toggleLabel,omitempty"`
	ToggleTitle    string   `json:"toggleTitle,omitempty"`
	ToggleIcon     string   `json:"toggleIcon,omitempty"`
	CopyLabel      string   `json:"copyLabel"`
	CopyIcon       string   `json:"copyIcon"`
	Preview        *Preview `json:"preview,omitempty"`
}

// StateOption configures a BlockState.
type StateOption func(*BlockState)

// WithClock replaces the clock used for the copy reset.
func WithClock(c Clock) StateOption {
	return func(s *BlockState) { s.clock = c }
}

// WithClipboard sets where copied snippets are written.
func WithClipboard(c Clipboard) StateOption {
	return func(s *BlockState) { s.clipboard = c }
}

// WithOnChange registers a callback invoked after state changes that
// happen outside an action, i.e. the deferred copy reset.
func WithOnChange(fn func(View)) StateOption {
	return func(s *BlockState) { s.onChange = fn }
}

// BlockState is the mutable UI shell around one rendered code block. The
// derived file map is recomputed whenever the source changes.
type BlockState struct {
	mu sync.Mutex

	id    string
	code  string
	lang  Language
	files Files

	previewVisible bool
	copied         bool

	// resetTimer is the single pending copy reset. resetGen invalidates
	// callbacks of timers that were replaced or stopped too late.
	resetTimer Timer
	resetGen   uint64

	clock     Clock
	clipboard Clipboard
	onChange  func(View)
}

// NewBlockState creates the state for a block.
func NewBlockState(id, code string, lang Language, opts ...StateOption) *BlockState {
	s := &BlockState{
		id:        id,
		clock:     SystemClock,
		clipboard: discardClipboard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setSource(code, lang)
	return s
}

// ID returns the block ID.
func (s *BlockState) ID() string {
	return s.id
}

// SetSource replaces the snippet and language. The file map is rebuilt
// from scratch when either differs.
func (s *BlockState) SetSource(code string, lang Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files != nil && code == s.code && lang == s.lang {
		return
	}
	s.setSource(code, lang)
}

func (s *BlockState) setSource(code string, lang Language) {
	s.code = code
	s.lang = lang
	s.files = ResolveFiles(code, lang)
	if s.files == nil {
		s.files = Files{}
	}
}

// Files returns the current virtual file map. Empty for non-runnable blocks.
func (s *BlockState) Files() Files {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

// HandleAction dispatches a named UI action.
func (s *BlockState) HandleAction(action string) error {
	switch action {
	case ActionToggle:
		s.Toggle()
	case ActionCopy:
		s.Copy()
	default:
		return fmt.Errorf("unknown block action: %s", action)
	}
	return nil
}

// Toggle shows or hides the live preview. It does nothing for blocks that
// cannot run.
func (s *BlockState) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lang.Runnable() {
		return
	}
	s.previewVisible = !s.previewVisible
}

// Copy writes the snippet to the clipboard, shows the confirmation, and
// restarts the reset delay. Clipboard failures are logged only.
func (s *BlockState) Copy() {
	s.mu.Lock()
	code := s.code
	s.mu.Unlock()

	if err := s.clipboard.WriteAll(code); err != nil {
		log.Printf("[Block] %s: clipboard write failed: %v", s.id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.copied = true
	s.scheduleResetLocked()
}

func (s *BlockState) scheduleResetLocked() {
	s.stopResetLocked()
	gen := s.resetGen
	s.resetTimer = s.clock.AfterFunc(CopyResetDelay, func() {
		s.resetCopied(gen)
	})
}

func (s *BlockState) stopResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.resetGen++
}

func (s *BlockState) resetCopied(gen uint64) {
	s.mu.Lock()
	if gen != s.resetGen {
		s.mu.Unlock()
		return
	}
	s.copied = false
	s.resetTimer = nil
	view := s.viewLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
}

// Close cancels any pending copy reset.
func (s *BlockState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopResetLocked()
}

// View returns a snapshot of the current UI state.
func (s *BlockState) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *BlockState) viewLocked() View {
	runnable := s.lang.Runnable()
	v := View{
		BlockID:        s.id,
		Language:       s.lang.Label(),
		Runnable:       runnable,
		PreviewVisible: runnable && s.previewVisible,
		Copied:         s.copied,
		CopyLabel:      "Copy",
		CopyIcon:       "copy",
	}
	if s.copied {
		v.CopyLabel = "Copied!"
		v.CopyIcon = "check"
	}
	if runnable {
		v.ToggleLabel, v.ToggleTitle, v.ToggleIcon = "Run Code", "Show live preview", "play"
		if s.previewVisible {
			v.ToggleLabel, v.ToggleTitle, v.ToggleIcon = "Hide Preview", "Hide live preview", "code"
		}
	}
	if v.PreviewVisible && len(s.files) > 0 {
		v.Preview = newPreview(s.files, s.lang)
	}
	return v
}

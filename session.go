package runblock

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MessageEnvelope is a client message addressed to one block.
type MessageEnvelope struct {
	BlockID string `json:"blockID"`
	Action  string `json:"action"`
}

// Session holds the UI state of every block of a page for one client.
type Session struct {
	ID string

	mu     sync.RWMutex
	page   *Page
	blocks map[string]*BlockState
}

// NewSession creates block states for all blocks of page. The options are
// applied to every block.
func NewSession(page *Page, opts ...StateOption) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		page:   page,
		blocks: make(map[string]*BlockState, len(page.Blocks)),
	}
	for _, b := range page.Blocks {
		s.blocks[b.ID] = NewBlockState(b.ID, b.Content, b.Lang(), opts...)
	}
	return s
}

// Page returns the page the session was created for.
func (s *Session) Page() *Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Block returns the state for a block ID.
func (s *Session) Block(id string) (*BlockState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	return b, ok
}

// Views returns the current view of every block, in page order.
func (s *Session) Views() []View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]View, 0, len(s.blocks))
	for _, b := range s.page.Blocks {
		if st, ok := s.blocks[b.ID]; ok {
			views = append(views, st.View())
		}
	}
	return views
}

// HandleMessage applies a client action and returns the block's new view.
func (s *Session) HandleMessage(msg MessageEnvelope) (View, error) {
	block, ok := s.Block(msg.BlockID)
	if !ok {
		return View{}, fmt.Errorf("unknown block: %s", msg.BlockID)
	}
	if err := block.HandleAction(msg.Action); err != nil {
		return View{}, fmt.Errorf("block %s: %w", msg.BlockID, err)
	}
	return block.View(), nil
}

// Reload swaps in a re-parsed page. Blocks that still exist keep their UI
// flags and get their source replaced; new blocks are created with opts.
func (s *Session) Reload(page *Page, opts ...StateOption) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*BlockState, len(page.Blocks))
	for _, b := range page.Blocks {
		lang := b.Lang()
		if st, ok := s.blocks[b.ID]; ok {
			st.SetSource(b.Content, lang)
			next[b.ID] = st
			delete(s.blocks, b.ID)
			continue
		}
		next[b.ID] = NewBlockState(b.ID, b.Content, lang, opts...)
	}
	for _, gone := range s.blocks {
		gone.Close()
	}
	s.page = page
	s.blocks = next
}

// Close stops every pending timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.blocks {
		b.Close()
	}
}

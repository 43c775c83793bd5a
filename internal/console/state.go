package console

import (
	"sync"
	"time"

	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/session"
	"github.com/aethra/marketconsole/internal/view"
)

// State is everything one browser session sees. mu serialises every change
// to it and is never held while the backend is being called.
type State struct {
	ID string

	mu        sync.Mutex
	startOnce sync.Once

	doc           *view.Document
	authenticated bool
	token         string
	admin         *session.AdminInfo
	current       string

	filters map[string]resources.Filter
	rows    map[string][]resources.Record

	loadSeq  map[string]uint64
	modalSeq map[string]uint64
	modals   map[string]*openModal

	lastUsed time.Time
}

// openModal remembers what an open dialog is editing
type openModal struct {
	kind     string
	resource string
	recordID string
}

// loadTag identifies one dispatched load
type loadTag struct {
	section string
	seq     uint64
}

func newState(id string, doc *view.Document, now time.Time) *State {
	return &State{
		ID:       id,
		doc:      doc,
		filters:  make(map[string]resources.Filter),
		rows:     make(map[string][]resources.Record),
		loadSeq:  make(map[string]uint64),
		modalSeq: make(map[string]uint64),
		modals:   make(map[string]*openModal),
		lastUsed: now,
	}
}

// Authenticated reports whether the session holds a verified token
func (st *State) Authenticated() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.authenticated
}

// Current returns the active section name
func (st *State) Current() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Inspect runs fn with the document while holding the state lock
func (st *State) Inspect(fn func(doc *view.Document)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.doc)
}

func (st *State) beginLoad(section string) loadTag {
	st.loadSeq[section]++
	return loadTag{section: section, seq: st.loadSeq[section]}
}

// isCurrent reports whether a load result may still be applied
func (st *State) isCurrent(tag loadTag) bool {
	return st.authenticated && st.current == tag.section && st.loadSeq[tag.section] == tag.seq
}

func (st *State) beginModal(modalID string) uint64 {
	st.modalSeq[modalID]++
	return st.modalSeq[modalID]
}

// reset drops everything tied to the signed-in admin and installs doc
func (st *State) reset(doc *view.Document) {
	st.doc = doc
	st.authenticated = false
	st.token = ""
	st.admin = nil
	st.current = ""
	st.filters = make(map[string]resources.Filter)
	st.rows = make(map[string][]resources.Record)
	for k := range st.loadSeq {
		st.loadSeq[k]++
	}
	for k := range st.modalSeq {
		st.modalSeq[k]++
	}
	st.modals = make(map[string]*openModal)
}

package server

import (
	"errors"
	"sort"
	"sync"
)

// voteSession is one client's walk through the prompts that drew at least one
// photo. Sessions are per (hunt, player); there is no shared turn order, and
// the only shared outcomes are the vote ledger and the one-shot
// voting -> finished transition. mu guards the walk state: a double-submitted
// vote or skip arrives on two handler goroutines for the same session.
type voteSession struct {
	mu       sync.Mutex
	huntID   string
	playerID string
	prompts  []uint
	index    int
	resolved map[uint]struct{}
}

type voteSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*voteSession
}

func newVoteSessionStore() *voteSessionStore {
	return &voteSessionStore{sessions: make(map[string]*voteSession)}
}

func (v *voteSessionStore) ensure(hunt *Hunt, playerID string) *voteSession {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := hunt.ID + "/" + playerID
	if session, ok := v.sessions[key]; ok {
		return session
	}
	session := &voteSession{
		huntID:   hunt.ID,
		playerID: playerID,
		prompts:  votablePrompts(hunt),
		resolved: make(map[uint]struct{}),
	}
	v.sessions[key] = session
	return session
}

func (v *voteSessionStore) drop(huntID, playerID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.sessions, huntID+"/"+playerID)
}

// votablePrompts lists prompts with at least one fulfilled submission,
// ordered by prompt id so a reconnecting client rebuilds the same walk.
func votablePrompts(hunt *Hunt) []uint {
	seen := make(map[uint]struct{})
	prompts := make([]uint, 0)
	for _, sub := range hunt.Submissions {
		if !sub.Fulfilled() {
			continue
		}
		if _, ok := seen[sub.PromptID]; ok {
			continue
		}
		seen[sub.PromptID] = struct{}{}
		prompts = append(prompts, sub.PromptID)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i] < prompts[j] })
	return prompts
}

func (vs *voteSession) currentPrompt() (uint, bool) {
	if vs.index < 0 || vs.index >= len(vs.prompts) {
		return 0, false
	}
	return vs.prompts[vs.index], true
}

func (vs *voteSession) done() bool {
	return vs.index >= len(vs.prompts)
}

// advance resolves the current prompt and moves the walk forward, skipping
// prompts this session has already resolved.
func (vs *voteSession) advance() {
	if prompt, ok := vs.currentPrompt(); ok {
		vs.resolved[prompt] = struct{}{}
	}
	for vs.index < len(vs.prompts) {
		if _, ok := vs.resolved[vs.prompts[vs.index]]; !ok {
			break
		}
		vs.index++
	}
}

// castVote appends a vote for a submission on the session's current prompt,
// then advances. The returned bool reports whether this advance finished the
// whole voting round.
func (s *Server) castVote(huntID, playerID string, submissionID int) (*Hunt, bool, error) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		return nil, false, errHuntNotFound
	}
	if hunt.Status != StatusVoting {
		return nil, false, errNotVoting
	}
	session := s.voteSessions.ensure(hunt, playerID)
	session.mu.Lock()
	defer session.mu.Unlock()
	prompt, ok := session.currentPrompt()
	if !ok {
		return nil, false, errors.New("no prompt left to vote on")
	}
	target, found := findSubmission(hunt, submissionID)
	if !found {
		return nil, false, errors.New("submission not found")
	}
	if target.PromptID != prompt {
		return nil, false, errors.New("submission is not on the current prompt")
	}

	hunt, vote, err := s.store.CastVote(huntID, playerID, submissionID)
	if err != nil {
		return nil, false, err
	}
	if err := s.persistVote(hunt, vote); err != nil {
		return nil, false, err
	}
	s.notifyChange(hunt, tableVotes, eventInsert, voteRow(hunt, vote))
	return s.advanceSession(huntID, session)
}

// skipVote advances without recording a vote.
func (s *Server) skipVote(huntID, playerID string) (*Hunt, bool, error) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		return nil, false, errHuntNotFound
	}
	if hunt.Status != StatusVoting {
		return nil, false, errNotVoting
	}
	session := s.voteSessions.ensure(hunt, playerID)
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.done() {
		return hunt, false, nil
	}
	return s.advanceSession(huntID, session)
}

// advanceSession moves the walk forward. Callers hold the session mutex.
func (s *Server) advanceSession(huntID string, session *voteSession) (*Hunt, bool, error) {
	session.advance()
	if !session.done() {
		hunt, ok := s.store.GetHunt(huntID)
		if !ok {
			return nil, false, errHuntNotFound
		}
		return hunt, false, nil
	}
	return s.finishVoting(huntID)
}

package server

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errHuntNotFound   = errors.New("hunt not found")
	errPlayerNotFound = errors.New("player not found")
	errHuntFinished   = errors.New("hunt already finished")
)

// Store holds the authoritative in-memory ledgers. All coordination between
// clients goes through these rows; the Postgres layer is a durable mirror.
type Store struct {
	mu               sync.Mutex
	nextID           int
	nextSubmissionID int
	nextVoteID       int
	hunts            map[string]*Hunt
	codes            map[string]string
}

func NewStore() *Store {
	return &Store{
		nextID:           1,
		nextSubmissionID: 1,
		nextVoteID:       1,
		hunts:            make(map[string]*Hunt),
		codes:            make(map[string]string),
	}
}

func (s *Store) CreateHunt(pack string, mode CompletionMode, requiredPromptCount int) *Hunt {
	s.mu.Lock()
	defer s.mu.Unlock()

	idNum := s.nextID
	s.nextID++
	id := fmt.Sprintf("hunt-%d", idNum)
	hunt := &Hunt{
		ID:                  id,
		Code:                s.uniqueJoinCode(idNum),
		Pack:                pack,
		CompletionMode:      mode,
		RequiredPromptCount: requiredPromptCount,
		Status:              StatusLobby,
		StatusChangedAt:     timeNowUTC(),
		CreatedAt:           timeNowUTC(),
	}
	s.hunts[id] = hunt
	s.codes[hunt.Code] = id
	return hunt
}

// uniqueJoinCode retries random generation against the live code index a
// bounded number of times. If randomness is unavailable or collisions keep
// coming, it degrades to encoding the hunt counter, probing forward until a
// free code turns up; the counter is unique per hunt so the probe terminates.
// Callers hold the store lock. The Postgres unique index is the durable
// backstop.
func (s *Store) uniqueJoinCode(idNum int) string {
	for attempt := 0; attempt < 100; attempt++ {
		code, err := newJoinCode()
		if err != nil {
			break
		}
		if _, taken := s.codes[code]; !taken {
			return code
		}
	}
	for offset := 0; offset <= len(s.codes); offset++ {
		code := encodeJoinCode(uint64(idNum + offset))
		if _, taken := s.codes[code]; !taken {
			return code
		}
	}
	return encodeJoinCode(uint64(idNum))
}

func (s *Store) GetHunt(id string) (*Hunt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hunt, ok := s.hunts[id]
	return hunt, ok
}

func (s *Store) FindHuntByCode(code string) (*Hunt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, false
	}
	hunt, ok := s.hunts[id]
	return hunt, ok
}

func (s *Store) UpdateHunt(id string, update func(hunt *Hunt) error) (*Hunt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hunt, ok := s.hunts[id]
	if !ok {
		return nil, errHuntNotFound
	}
	if err := update(hunt); err != nil {
		return nil, err
	}
	return hunt, nil
}

// UpdateHuntID renames a hunt once its Postgres row id is known.
func (s *Store) UpdateHuntID(hunt *Hunt, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hunt.ID == newID {
		return
	}
	delete(s.hunts, hunt.ID)
	hunt.ID = newID
	s.hunts[newID] = hunt
	s.codes[hunt.Code] = newID
}

// Join is insert-if-absent on (hunt, player). An existing membership row is
// returned untouched, so a host can never be downgraded by a repeat join.
// The first member of a hunt becomes its host. An empty playerID mints a new
// identity. The returned bool reports whether a row was created.
func (s *Store) Join(huntIDOrCode, playerID, displayName string) (*Hunt, *HuntPlayer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hunt, ok := s.hunts[huntIDOrCode]
	if !ok {
		if id, found := s.codes[strings.ToUpper(strings.TrimSpace(huntIDOrCode))]; found {
			hunt, ok = s.hunts[id]
		}
	}
	if !ok {
		return nil, nil, false, errHuntNotFound
	}

	if playerID != "" {
		for i := range hunt.Players {
			if hunt.Players[i].PlayerID == playerID {
				return hunt, &hunt.Players[i], false, nil
			}
		}
	}
	if hunt.Status == StatusFinished {
		return nil, nil, false, errHuntFinished
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}

	member := HuntPlayer{
		PlayerID:    playerID,
		DisplayName: displayName,
		Role:        RolePlayer,
		JoinedAt:    timeNowUTC(),
	}
	if len(hunt.Players) == 0 {
		member.Role = RoleHost
	}
	hunt.Players = append(hunt.Players, member)
	return hunt, &hunt.Players[len(hunt.Players)-1], true, nil
}

func (s *Store) GetPlayer(huntID, playerID string) (*Hunt, *HuntPlayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hunt, ok := s.hunts[huntID]
	if !ok {
		return nil, nil, false
	}
	for i := range hunt.Players {
		if hunt.Players[i].PlayerID == playerID {
			return hunt, &hunt.Players[i], true
		}
	}
	return hunt, nil, false
}

func findMember(hunt *Hunt, playerID string) (*HuntPlayer, bool) {
	for i := range hunt.Players {
		if hunt.Players[i].PlayerID == playerID {
			return &hunt.Players[i], true
		}
	}
	return nil, false
}

func findSubmission(hunt *Hunt, submissionID int) (*Submission, bool) {
	for i := range hunt.Submissions {
		if hunt.Submissions[i].ID == submissionID {
			return &hunt.Submissions[i], true
		}
	}
	return nil, false
}

func (s *Store) ListHuntSummaries() []HuntSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]HuntSummary, 0, len(s.hunts))
	for _, hunt := range s.hunts {
		list = append(list, HuntSummary{
			ID:      hunt.ID,
			Code:    hunt.Code,
			Status:  hunt.Status,
			Players: len(hunt.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return huntSortKey(list[i].ID) < huntSortKey(list[j].ID)
	})
	return list
}

func huntSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

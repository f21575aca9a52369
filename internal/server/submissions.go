package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var errPhotoAttached = errors.New("photo already attached")

// EnsureSubmission returns the existing submission for (player, prompt) or
// creates an intent row with no photo. Safe to call repeatedly.
func (s *Store) EnsureSubmission(huntID, playerID string, promptID uint) (*Hunt, *Submission, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hunt, ok := s.hunts[huntID]
	if !ok {
		return nil, nil, false, errHuntNotFound
	}
	if _, ok := findMember(hunt, playerID); !ok {
		return nil, nil, false, errPlayerNotFound
	}
	for i := range hunt.Submissions {
		sub := &hunt.Submissions[i]
		if sub.PlayerID == playerID && sub.PromptID == promptID {
			return hunt, sub, false, nil
		}
	}

	sub := Submission{
		ID:        s.nextSubmissionID,
		PlayerID:  playerID,
		PromptID:  promptID,
		CreatedAt: timeNowUTC(),
	}
	s.nextSubmissionID++
	hunt.Submissions = append(hunt.Submissions, sub)
	return hunt, &hunt.Submissions[len(hunt.Submissions)-1], true, nil
}

func (s *Server) ensureSubmission(huntID, playerID string, promptID uint) (*Hunt, *Submission, error) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		return nil, nil, errHuntNotFound
	}
	if _, err := s.promptInPack(hunt.Pack, promptID); err != nil {
		return nil, nil, err
	}
	hunt, sub, created, err := s.store.EnsureSubmission(huntID, playerID, promptID)
	if err != nil {
		return nil, nil, err
	}
	if created {
		if err := s.persistSubmission(hunt, sub); err != nil {
			return nil, nil, err
		}
		s.notifyChange(hunt, tableSubmissions, eventInsert, submissionRow(hunt, sub))
	}
	return hunt, sub, nil
}

// attachPhoto writes the photo to the blob store first and only records the
// path once the write succeeded, so a submission never points at bytes that
// were not durably stored. The path is set exactly once.
func (s *Server) attachPhoto(huntID string, submissionID int, photo []byte) (*Submission, error) {
	if len(photo) == 0 {
		return nil, errors.New("no photo data")
	}
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		return nil, errHuntNotFound
	}
	path := photoBlobPath(hunt.ID, photo)
	if err := s.blobs.Put(path, photo); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	var sub *Submission
	hunt, err := s.store.UpdateHunt(huntID, func(hunt *Hunt) error {
		found, ok := findSubmission(hunt, submissionID)
		if !ok {
			return errors.New("submission not found")
		}
		if found.Fulfilled() {
			return errPhotoAttached
		}
		found.PhotoPath = path
		sub = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistSubmissionPhoto(hunt, sub); err != nil {
		return nil, err
	}
	s.notifyChange(hunt, tableSubmissions, eventUpdate, submissionRow(hunt, sub))
	return sub, nil
}

// photoURL resolves a displayable URL for a fulfilled submission, retrying
// through blob-store read-after-write lag. The empty string means no preview
// is available yet; that is not an error.
func (s *Server) photoURL(hunt *Hunt, sub *Submission) string {
	if sub == nil || !sub.Fulfilled() {
		return ""
	}
	url, ok := signedURLWithRetry(s.blobs, sub.PhotoPath, s.signedURLTTL(), s.cfg.PhotoURLRetries, s.photoRetryDelay())
	if !ok {
		return ""
	}
	return url
}

func photoBlobPath(huntID string, photo []byte) string {
	digest := sha256.Sum256(photo)
	return fmt.Sprintf("hunts/%s/%s.jpg", huntID, hex.EncodeToString(digest[:8]))
}

package server

import (
	"errors"
	"testing"
	"time"
)

func TestEnsureSubmissionIdempotent(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")

	_, first, err := srv.ensureSubmission(hunt.ID, ids[0], 1)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	_, second, err := srv.ensureSubmission(hunt.ID, ids[0], 1)
	if err != nil {
		t.Fatalf("repeat ensure: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same submission id, got %d and %d", first.ID, second.ID)
	}
	hunt, _ = srv.store.GetHunt(hunt.ID)
	if len(hunt.Submissions) != 1 {
		t.Fatalf("expected one submission row, got %d", len(hunt.Submissions))
	}
}

func TestEnsureSubmissionChecksPromptAndMembership(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")

	if _, _, err := srv.ensureSubmission(hunt.ID, ids[0], 999); err == nil {
		t.Fatal("expected error for prompt outside the pack")
	}
	if _, _, err := srv.ensureSubmission(hunt.ID, "stranger", 1); !errors.Is(err, errPlayerNotFound) {
		t.Fatalf("expected membership error, got %v", err)
	}
}

func TestAttachPhotoSetsPathExactlyOnce(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")
	_, sub, err := srv.ensureSubmission(hunt.ID, ids[0], 1)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	attached, err := srv.attachPhoto(hunt.ID, sub.ID, []byte("photo-bytes"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !attached.Fulfilled() {
		t.Fatal("submission not fulfilled after attach")
	}
	if _, err := srv.attachPhoto(hunt.ID, sub.ID, []byte("other-bytes")); !errors.Is(err, errPhotoAttached) {
		t.Fatalf("expected second attach to be rejected, got %v", err)
	}
}

type failingBlobStore struct{}

func (failingBlobStore) Put(string, []byte) error {
	return errors.New("storage down")
}

func (failingBlobStore) SignedURL(string, time.Duration) (string, error) {
	return "", errors.New("storage down")
}

func TestAttachPhotoBlobFailureKeepsIntent(t *testing.T) {
	srv := newServerForTest(t)
	hunt, ids := setupActiveHunt(t, srv, "Ada")
	_, sub, err := srv.ensureSubmission(hunt.ID, ids[0], 1)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	srv.blobs = failingBlobStore{}
	if _, err := srv.attachPhoto(hunt.ID, sub.ID, []byte("photo")); err == nil {
		t.Fatal("expected blob failure to surface")
	}
	hunt, _ = srv.store.GetHunt(hunt.ID)
	stored, _ := findSubmission(hunt, sub.ID)
	if stored.Fulfilled() {
		t.Fatal("photo path recorded despite failed blob write")
	}
}

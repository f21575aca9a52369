package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
)

type createHuntRequest struct {
	Pack                string `json:"pack"`
	CompletionMode      string `json:"completion_mode"`
	RequiredPromptCount int    `json:"required_prompt_count"`
	PlayerID            string `json:"player_id"`
	DisplayName         string `json:"display_name"`
}

type joinHuntRequest struct {
	Code        string `json:"code"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

type renameRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type submissionRequest struct {
	PlayerID string `json:"player_id"`
	PromptID uint   `json:"prompt_id"`
}

type photoRequest struct {
	SubmissionID int    `json:"submission_id"`
	PhotoData    string `json:"photo_data"`
}

type voteRequest struct {
	PlayerID     string `json:"player_id"`
	SubmissionID int    `json:"submission_id"`
}

func (s *Server) handleCreateHunt(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r) {
		return
	}
	var req createHuntRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pack := strings.TrimSpace(req.Pack)
	if pack == "" {
		writeError(w, http.StatusBadRequest, "pack is required")
		return
	}
	if !s.packExists(pack) {
		writeError(w, http.StatusBadRequest, "unknown pack")
		return
	}
	mode, err := validateCompletionMode(req.CompletionMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequiredPromptCount < 0 {
		writeError(w, http.StatusBadRequest, "required_prompt_count must not be negative")
		return
	}

	hunt := s.store.CreateHunt(pack, mode, req.RequiredPromptCount)
	if err := s.persistHunt(hunt); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create hunt")
		return
	}
	hunt, host, err := s.joinHunt(hunt.ID, req.PlayerID, req.DisplayName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join hunt")
		return
	}
	log.Printf("hunt created hunt_id=%s code=%s pack=%s host=%s", hunt.ID, hunt.Code, hunt.Pack, host.PlayerID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"hunt_id":   hunt.ID,
		"code":      hunt.Code,
		"status":    hunt.Status,
		"player_id": host.PlayerID,
		"role":      host.Role,
	})
}

func (s *Server) handleJoinHunt(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r) {
		return
	}
	var req joinHuntRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	hunt, member, err := s.joinHunt(req.Code, req.PlayerID, req.DisplayName)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, errHuntNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	log.Printf("player joined hunt_id=%s player_id=%s", hunt.ID, member.PlayerID)
	writeJSON(w, http.StatusOK, map[string]any{
		"hunt_id":      hunt.ID,
		"code":         hunt.Code,
		"status":       hunt.Status,
		"player_id":    member.PlayerID,
		"display_name": member.DisplayName,
		"role":         member.Role,
	})
}

func (s *Server) handleHuntSubroutes(w http.ResponseWriter, r *http.Request) {
	huntID, action, ok := parseHuntPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		switch {
		case action == "":
			s.handleHuntSnapshot(w, r, huntID)
		case action == "prompts":
			s.handlePlayView(w, r, huntID)
		case action == "results":
			s.handleResults(w, r, huntID)
		case strings.HasPrefix(action, "photos/"):
			s.handlePhotoURL(w, r, huntID, strings.TrimPrefix(action, "photos/"))
		default:
			http.NotFound(w, r)
		}
		return
	}
	switch action {
	case "name":
		s.handleRename(w, r, huntID)
	case "finish":
		s.handleFinish(w, r, huntID)
	case "unfinish":
		s.handleUnfinish(w, r, huntID)
	case "leave":
		s.handleLeave(w, r, huntID)
	case "start":
		s.handleStart(w, r, huntID)
	case "submissions":
		s.handleEnsureSubmission(w, r, huntID)
	case "photos":
		s.handleAttachPhoto(w, r, huntID)
	case "votes":
		s.handleCastVote(w, r, huntID)
	case "votes/skip":
		s.handleSkipVote(w, r, huntID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleHuntSnapshot(w http.ResponseWriter, r *http.Request, huntID string) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, snapshotHunt(hunt))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request, huntID string) {
	var req renameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	member, err := s.setDisplayName(huntID, req.PlayerID, req.Name)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id":    member.PlayerID,
		"display_name": member.DisplayName,
	})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request, huntID string) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	prompts, err := s.content.ListPrompts(hunt.Pack)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prompts")
		return
	}
	if !finishEligible(hunt, req.PlayerID, len(prompts)) {
		writeError(w, http.StatusConflict, "not all required prompts are fulfilled")
		return
	}
	now := timeNowUTC()
	hunt, member, err := s.markFinished(huntID, req.PlayerID, &now)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	hunt, advanced, err := s.tryFinishHunt(huntID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if advanced {
		log.Printf("all players finished hunt_id=%s status=%s", hunt.ID, hunt.Status)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id":   member.PlayerID,
		"finished_at": member.FinishedAt,
		"status":      hunt.Status,
	})
}

func (s *Server) handleUnfinish(w http.ResponseWriter, r *http.Request, huntID string) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, member, err := s.markFinished(huntID, req.PlayerID, nil)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id":   member.PlayerID,
		"finished_at": member.FinishedAt,
		"status":      hunt.Status,
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, huntID string) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.leaveHunt(huntID, req.PlayerID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"left": true})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, huntID string) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, err := s.startHunt(huntID, req.PlayerID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": hunt.Status})
}

func (s *Server) handlePlayView(w http.ResponseWriter, r *http.Request, huntID string) {
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	order, prompts, err := s.promptOrderFor(huntID, playerID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	texts := make(map[uint]string, len(prompts))
	for _, prompt := range prompts {
		texts[prompt.ID] = prompt.Text
	}
	type submissionState struct {
		id        int
		fulfilled bool
	}
	state := make(map[uint]submissionState)
	for _, sub := range hunt.Submissions {
		if sub.PlayerID == playerID {
			state[sub.PromptID] = submissionState{id: sub.ID, fulfilled: sub.Fulfilled()}
		}
	}

	entries := make([]map[string]any, 0, len(order))
	for _, id := range playOrder(order, hunt.Submissions, playerID) {
		entry := map[string]any{
			"prompt_id": id,
			"text":      texts[id],
			"fulfilled": false,
		}
		if sub, ok := state[id]; ok {
			entry["submission_id"] = sub.id
			entry["fulfilled"] = sub.fulfilled
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hunt_id": hunt.ID,
		"status":  hunt.Status,
		"prompts": entries,
	})
}

func (s *Server) handleEnsureSubmission(w http.ResponseWriter, r *http.Request, huntID string) {
	var req submissionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if hunt.Status != StatusActive {
		writeError(w, http.StatusConflict, "hunt is not active")
		return
	}
	hunt, sub, err := s.ensureSubmission(huntID, req.PlayerID, req.PromptID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submission_id": sub.ID,
		"prompt_id":     sub.PromptID,
		"fulfilled":     sub.Fulfilled(),
	})
}

func (s *Server) handleAttachPhoto(w http.ResponseWriter, r *http.Request, huntID string) {
	var req photoRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	photo, err := decodePhotoData(req.PhotoData)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(photo) > maxPhotoBytes {
		writeError(w, http.StatusBadRequest, "photo is too large")
		return
	}
	sub, err := s.attachPhoto(huntID, req.SubmissionID, photo)
	if err != nil {
		if errors.Is(err, errPhotoAttached) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submission_id": sub.ID,
		"fulfilled":     true,
	})
}

func (s *Server) handlePhotoURL(w http.ResponseWriter, r *http.Request, huntID, rawID string) {
	submissionID, err := strconv.Atoi(rawID)
	if err != nil || submissionID <= 0 {
		http.NotFound(w, r)
		return
	}
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sub, ok := findSubmission(hunt, submissionID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	url := s.photoURL(hunt, sub)
	writeJSON(w, http.StatusOK, map[string]any{
		"submission_id": sub.ID,
		"available":     url != "",
		"url":           url,
	})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request, huntID string) {
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, done, err := s.castVote(huntID, req.PlayerID, req.SubmissionID)
	if err != nil {
		writeVoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": hunt.Status,
		"done":   done,
	})
}

func (s *Server) handleSkipVote(w http.ResponseWriter, r *http.Request, huntID string) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hunt, done, err := s.skipVote(huntID, req.PlayerID)
	if err != nil {
		writeVoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": hunt.Status,
		"done":   done,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, huntID string) {
	hunt, ok := s.store.GetHunt(huntID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	prompts, err := s.content.ListPrompts(hunt.Pack)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prompts")
		return
	}
	tally := tallyHunt(prompts, hunt.Players, hunt.Submissions, hunt.Votes)
	writeJSON(w, http.StatusOK, map[string]any{
		"hunt_id":     hunt.ID,
		"status":      hunt.Status,
		"prompts":     tally.Prompts,
		"leaderboard": tally.Leaderboard,
	})
}

func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.content.ListPacks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load packs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packs": packs})
}

func (s *Server) handleBlobFetch(w http.ResponseWriter, r *http.Request) {
	path, ok := parseBlobPath(r.URL.Path)
	if !ok || s.blobFiles == nil {
		http.NotFound(w, r)
		return
	}
	expires, sig, ok := parseBlobQuery(r.URL.Query().Get("exp"), r.URL.Query().Get("sig"))
	if !ok {
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}
	data, err := s.blobFiles.Open(path, expires, sig)
	if err != nil {
		if errors.Is(err, errBlobNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write(data)
}

func (s *Server) packExists(slug string) bool {
	packs, err := s.content.ListPacks()
	if err != nil {
		return false
	}
	for _, pack := range packs {
		if pack.Slug == slug {
			return true
		}
	}
	return false
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errHuntNotFound), errors.Is(err, errPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errHuntFinished):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusConflict, err.Error())
	}
}

func writeVoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errHuntNotFound), errors.Is(err, errPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errNotVoting), errors.Is(err, errAlreadyVoted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"snaphunt/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The store is authoritative; these mirrors make rows durable when Postgres
// is configured. A nil db (tests, dev without DATABASE_URL) is a no-op.

func (s *Server) persistHunt(hunt *Hunt) error {
	if s.db == nil {
		return nil
	}
	record := db.Hunt{
		Code:                hunt.Code,
		Pack:                hunt.Pack,
		CompletionMode:      string(hunt.CompletionMode),
		RequiredPromptCount: hunt.RequiredPromptCount,
		Status:              string(hunt.Status),
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	hunt.DBID = record.ID
	newID := fmt.Sprintf("hunt-%d", record.ID)
	if hunt.ID != newID {
		s.store.UpdateHuntID(hunt, newID)
	}
	return s.persistEvent(hunt, "hunt_created", EventPayload{
		HuntID: hunt.ID,
		Code:   hunt.Code,
		Pack:   hunt.Pack,
	})
}

func (s *Server) ensureHuntDBID(hunt *Hunt) error {
	if s.db == nil || hunt.DBID != 0 {
		return nil
	}
	var record db.Hunt
	if err := s.db.Where("code = ?", hunt.Code).First(&record).Error; err != nil {
		return err
	}
	hunt.DBID = record.ID
	return nil
}

func (s *Server) persistMember(hunt *Hunt, member *HuntPlayer) error {
	if s.db == nil {
		return nil
	}
	if member.DBID != 0 {
		return nil
	}
	if err := s.ensureHuntDBID(hunt); err != nil {
		return err
	}
	record := db.HuntPlayer{
		HuntID:      hunt.DBID,
		PlayerID:    member.PlayerID,
		DisplayName: member.DisplayName,
		Role:        string(member.Role),
		JoinedAt:    member.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findMemberDBID(hunt.DBID, member.PlayerID)
			if lookupErr == nil && existing != 0 {
				member.DBID = existing
				return nil
			}
		}
		return err
	}
	member.DBID = record.ID
	return s.persistEvent(hunt, "player_joined", EventPayload{
		PlayerID:    member.PlayerID,
		DisplayName: member.DisplayName,
	})
}

func (s *Server) findMemberDBID(huntDBID uint, playerID string) (uint, error) {
	var record db.HuntPlayer
	err := s.db.Where("hunt_id = ? AND player_id = ?", huntDBID, playerID).First(&record).Error
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *Server) persistMemberUpdate(hunt *Hunt, member *HuntPlayer) error {
	if s.db == nil {
		return nil
	}
	if member.DBID == 0 {
		if err := s.persistMember(hunt, member); err != nil {
			return err
		}
	}
	updates := map[string]any{
		"display_name": member.DisplayName,
		"finished_at":  member.FinishedAt,
		"updated_at":   time.Now().UTC(),
	}
	return s.db.Model(&db.HuntPlayer{}).Where("id = ?", member.DBID).Updates(updates).Error
}

func (s *Server) persistMemberDelete(hunt *Hunt, member *HuntPlayer) error {
	if s.db == nil || member.DBID == 0 {
		return nil
	}
	return s.db.Delete(&db.HuntPlayer{}, member.DBID).Error
}

func (s *Server) persistSubmission(hunt *Hunt, sub *Submission) error {
	if s.db == nil {
		return nil
	}
	if sub.DBID != 0 {
		return nil
	}
	if err := s.ensureHuntDBID(hunt); err != nil {
		return err
	}
	record := db.Submission{
		HuntID:   hunt.DBID,
		PlayerID: sub.PlayerID,
		PromptID: sub.PromptID,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	sub.DBID = record.ID
	return s.persistEvent(hunt, "submission_created", EventPayload{
		PlayerID:     sub.PlayerID,
		PromptID:     sub.PromptID,
		SubmissionID: sub.ID,
	})
}

func (s *Server) persistSubmissionPhoto(hunt *Hunt, sub *Submission) error {
	if s.db == nil {
		return nil
	}
	if sub.DBID == 0 {
		if err := s.persistSubmission(hunt, sub); err != nil {
			return err
		}
	}
	err := s.db.Model(&db.Submission{}).Where("id = ?", sub.DBID).
		Update("photo_path", sub.PhotoPath).Error
	if err != nil {
		return err
	}
	return s.persistEvent(hunt, "photo_attached", EventPayload{
		PlayerID:     sub.PlayerID,
		SubmissionID: sub.ID,
		PhotoPath:    sub.PhotoPath,
	})
}

func (s *Server) persistVote(hunt *Hunt, vote *Vote) error {
	if s.db == nil {
		return nil
	}
	sub, ok := findSubmission(hunt, vote.SubmissionID)
	if !ok || sub.DBID == 0 {
		return nil
	}
	record := db.Vote{
		SubmissionID: sub.DBID,
		PlayerID:     vote.PlayerID,
		Category:     vote.Category,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	vote.DBID = record.ID
	return s.persistEvent(hunt, "vote_cast", EventPayload{
		PlayerID:     vote.PlayerID,
		SubmissionID: vote.SubmissionID,
		Category:     vote.Category,
	})
}

func (s *Server) persistStatus(hunt *Hunt, eventType string) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureHuntDBID(hunt); err != nil {
		return err
	}
	err := s.db.Model(&db.Hunt{}).Where("id = ?", hunt.DBID).
		Update("status", string(hunt.Status)).Error
	if err != nil {
		return err
	}
	return s.persistEvent(hunt, eventType, EventPayload{
		HuntID: hunt.ID,
		Status: string(hunt.Status),
	})
}

func (s *Server) persistEvent(hunt *Hunt, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if hunt.DBID == 0 {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		HuntID:  hunt.DBID,
		Type:    eventType,
		Payload: datatypes.JSON(body),
	}
	return s.db.Create(&record).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

package memberships

import (
	"errors"
	"fmt"
	"time"

	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/notify"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("membership not found")
	ErrDuplicateMembership = errors.New("membership already exists")
	ErrInvalidAction       = errors.New("action not valid for current state")
	ErrForbidden           = errors.New("not authorized for this membership")
	ErrPartialBatch        = errors.New("batch contains memberships that are not pending or not led by the caller")
)

// Actions accepted by Decide and BulkDecide
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Actor identifies who is performing an operation. Services take the actor
// explicitly rather than reading it from ambient request state.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

// Service is the authoritative state machine for a student's relationship
// to a club. All transitions run as conditional writes so concurrent calls
// cannot re-apply a transition that has already happened.
type Service struct {
	db *gorm.DB
}

// NewService creates a membership service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Apply creates a pending membership for (userID, clubID).
// The (user, club) pair is unique: a second application while any row exists
// fails with ErrDuplicateMembership, regardless of that row's status. The
// club's leader, if one is set, gets an outbox notification.
func (s *Service) Apply(userID, clubID uint) (*models.Membership, error) {
	var club models.Club
	if err := s.db.First(&club, clubID).Error; err != nil {
		return nil, ErrNotFound
	}

	var existing models.Membership
	if err := s.db.Where("user_id = ? AND club_id = ?", userID, clubID).First(&existing).Error; err == nil {
		return nil, ErrDuplicateMembership
	}

	membership := models.Membership{
		UserID: userID,
		ClubID: clubID,
		Status: models.MembershipPending,
		Role:   models.MemberRoleMember,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		if club.LeaderID != nil {
			var applicant models.User
			if err := tx.First(&applicant, userID).Error; err != nil {
				return err
			}
			return notify.Enqueue(tx, *club.LeaderID, models.NotificationApplication,
				"New membership application",
				fmt.Sprintf("%s applied to join %s", applicant.Name, club.Name))
		}
		return nil
	})
	if err != nil {
		// A concurrent Apply can slip past the pre-check; the unique index
		// on (user_id, club_id) is the real guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateMembership
		}
		return nil, err
	}

	return &membership, nil
}

// Decide transitions a single pending membership to accepted or rejected.
// Only an admin or the leader of the membership's club may decide. The write
// is conditioned on the row still being pending, so a concurrent second call
// fails with ErrInvalidAction instead of re-firing side effects.
func (s *Service) Decide(actor Actor, membershipID uint, action, reason string) (*models.Membership, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, ErrInvalidAction
	}

	var membership models.Membership
	if err := s.db.Preload("Club").Preload("User").First(&membership, membershipID).Error; err != nil {
		return nil, ErrNotFound
	}

	if !s.canDecide(actor, membership.ClubID) {
		return nil, ErrForbidden
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.MembershipRejected}
		if action == ActionApprove {
			now := time.Now()
			updates["status"] = models.MembershipAccepted
			updates["joined_at"] = &now
		}

		res := tx.Model(&models.Membership{}).
			Where("id = ? AND status = ?", membershipID, models.MembershipPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidAction
		}

		return notify.Enqueue(tx, membership.UserID, decisionType(action),
			decisionTitle(action, membership.Club.Name),
			decisionMessage(action, membership.Club.Name, reason))
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Club").Preload("User").First(&membership, membershipID).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// BulkResult summarizes one row of a bulk decision
type BulkResult struct {
	MembershipID uint   `json:"membership_id"`
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
}

// BulkDecide applies one action to a set of memberships, all or nothing.
// Every targeted membership must be pending and, unless the actor is an
// admin, belong to a club the actor leads. Any shortfall rejects the whole
// batch with ErrPartialBatch and mutates zero rows.
func (s *Service) BulkDecide(actor Actor, ids []uint, action, reason string) ([]BulkResult, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, ErrInvalidAction
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleClubLeader {
		return nil, ErrForbidden
	}

	var results []BulkResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		matched := tx.Preload("Club").
			Where("id IN ? AND status = ?", ids, models.MembershipPending)
		if actor.Role != models.RoleAdmin {
			var ledClubIDs []uint
			if err := tx.Model(&models.Club{}).Where("leader_id = ?", actor.UserID).
				Pluck("id", &ledClubIDs).Error; err != nil {
				return err
			}
			matched = matched.Where("club_id IN ?", ledClubIDs)
		}

		var rows []models.Membership
		if err := matched.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return ErrPartialBatch
		}

		updates := map[string]interface{}{"status": models.MembershipRejected}
		if action == ActionApprove {
			now := time.Now()
			updates["status"] = models.MembershipAccepted
			updates["joined_at"] = &now
		}

		res := tx.Model(&models.Membership{}).
			Where("id IN ? AND status = ?", ids, models.MembershipPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			// lost a race between the read and the write
			return ErrPartialBatch
		}

		newStatus := models.MembershipAccepted
		if action == ActionReject {
			newStatus = models.MembershipRejected
		}
		for _, row := range rows {
			if err := notify.Enqueue(tx, row.UserID, decisionType(action),
				decisionTitle(action, row.Club.Name),
				decisionMessage(action, row.Club.Name, reason)); err != nil {
				return err
			}
			results = append(results, BulkResult{
				MembershipID: row.ID,
				UserID:       row.UserID,
				Status:       string(newStatus),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Remove deletes a membership row by ID (administrative path)
func (s *Service) Remove(membershipID uint) error {
	res := s.db.Delete(&models.Membership{}, membershipID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Leave deletes the caller's own membership of a club (self-service path)
func (s *Service) Leave(userID, clubID uint) error {
	res := s.db.Where("user_id = ? AND club_id = ?", userID, clubID).Delete(&models.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// canDecide reports whether the actor may decide memberships of the given club
func (s *Service) canDecide(actor Actor, clubID uint) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.Role != models.RoleClubLeader {
		return false
	}
	var club models.Club
	if err := s.db.First(&club, clubID).Error; err != nil {
		return false
	}
	return club.LeaderID != nil && *club.LeaderID == actor.UserID
}

func decisionType(action string) string {
	if action == ActionApprove {
		return models.NotificationApproval
	}
	return models.NotificationRejection
}

func decisionTitle(action, clubName string) string {
	if action == ActionApprove {
		return fmt.Sprintf("Welcome to %s", clubName)
	}
	return fmt.Sprintf("Your application to %s", clubName)
}

func decisionMessage(action, clubName, reason string) string {
	if action == ActionApprove {
		return fmt.Sprintf("Your application to join %s has been approved.", clubName)
	}
	msg := fmt.Sprintf("Your application to join %s has been rejected.", clubName)
	if reason != "" {
		msg += " Reason: " + reason
	}
	return msg
}

package clubs

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/notify"
	"gorm.io/gorm"
)

var (
	ErrClubNotFound      = errors.New("club not found")
	ErrNotLeaderEligible = errors.New("user does not have an accepted membership of this club")
)

// AssignLeader makes userID the leader of clubID. The user must already hold
// an accepted membership of the club. If the club has a different current
// leader they are demoted first: their membership role goes back to member,
// and their global role back to student unless they still lead another club.
// Demotion and promotion commit in one transaction; the operation succeeds
// only once every write has.
func AssignLeader(db *gorm.DB, clubID, userID uint) (*models.Club, error) {
	var club models.Club
	if err := db.First(&club, clubID).Error; err != nil {
		return nil, ErrClubNotFound
	}

	var membership models.Membership
	if err := db.Where("user_id = ? AND club_id = ?", userID, clubID).First(&membership).Error; err != nil {
		return nil, ErrNotLeaderEligible
	}
	if membership.Status != models.MembershipAccepted {
		return nil, ErrNotLeaderEligible
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if club.LeaderID != nil && *club.LeaderID != userID {
			prevID := *club.LeaderID
			if err := tx.Model(&models.Membership{}).
				Where("user_id = ? AND club_id = ?", prevID, clubID).
				Update("role", models.MemberRoleMember).Error; err != nil {
				return err
			}

			// The previous leader keeps the club_leader role if they still
			// lead some other club.
			var otherLed int64
			if err := tx.Model(&models.Club{}).
				Where("leader_id = ? AND id <> ?", prevID, clubID).
				Count(&otherLed).Error; err != nil {
				return err
			}
			if otherLed == 0 {
				if err := tx.Model(&models.User{}).
					Where("id = ? AND role = ?", prevID, models.RoleClubLeader).
					Update("role", models.RoleStudent).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&models.User{}).
			Where("id = ? AND role <> ?", userID, models.RoleAdmin).
			Update("role", models.RoleClubLeader).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Club{}).Where("id = ?", clubID).
			Update("leader_id", userID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Membership{}).Where("id = ?", membership.ID).
			Update("role", models.MemberRoleLeader).Error; err != nil {
			return err
		}

		return notify.Enqueue(tx, userID, models.NotificationPromotion,
			fmt.Sprintf("You are now the leader of %s", club.Name),
			fmt.Sprintf("You have been assigned as the leader of %s.", club.Name))
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Leader").First(&club, clubID).Error; err != nil {
		return nil, err
	}
	return &club, nil
}

// SetLeaderRequest represents the request to assign a club leader
type SetLeaderRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// SetLeader assigns a club's leader (admin only)
// @Summary Set a club's leader
// @Description Promote an accepted member to club leader, demoting any previous leader
// @Tags clubs
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body SetLeaderRequest true "New leader"
// @Success 200 {object} ClubResponse
// @Failure 404 {object} map[string]string "Club not found"
// @Failure 409 {object} map[string]string "User has no accepted membership"
// @Security BearerAuth
// @Router /clubs/{id}/leader [put]
func (h *Handler) SetLeader(c *gin.Context) {
	clubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid club ID"})
		return
	}

	var req SetLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	club, err := AssignLeader(h.db, uint(clubID), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrClubNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Club not found"})
		case errors.Is(err, ErrNotLeaderEligible):
			c.JSON(http.StatusConflict, gin.H{"error": "User must be an accepted member of the club"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign leader"})
		}
		return
	}

	c.JSON(http.StatusOK, h.toResponse(*club))
}

package memberships

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
)

// Export streams all memberships as CSV (admin only)
// @Summary Export memberships
// @Description Download every membership record as a CSV file
// @Tags memberships
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Security BearerAuth
// @Router /memberships/export [get]
func (h *Handler) Export(c *gin.Context) {
	var rows []models.Membership
	if err := h.db.Preload("User").Preload("Club").Order("club_id, created_at").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=memberships.csv")

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write([]string{"id", "club", "name", "email", "student_id", "status", "role", "joined_at", "created_at"})
	for _, m := range rows {
		studentID := ""
		if m.User.StudentID != nil {
			studentID = *m.User.StudentID
		}
		joinedAt := ""
		if m.JoinedAt != nil {
			joinedAt = m.JoinedAt.Format("2006-01-02 15:04:05")
		}
		w.Write([]string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.Club.Name,
			m.User.Name,
			m.User.Email,
			studentID,
			string(m.Status),
			string(m.Role),
			joinedAt,
			m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

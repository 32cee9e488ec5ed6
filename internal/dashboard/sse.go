package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kwheeler/lifegit/internal/models"
)

// commitEvent holds data for a commit SSE event.
type commitEvent struct {
	ID       uint   `json:"id"`
	BranchID string `json:"branch_id"`
	Message  string `json:"message"`
	Type     string `json:"type"`
}

// handleSSE creates an SSE handler that streams newly appended commits.
func handleSSE(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		// Send connected event.
		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		if db == nil {
			return
		}

		// Only stream commits appended after the stream started.
		var lastSeenID uint
		var maxCommit models.Commit
		if err := db.Order("id DESC").Limit(1).First(&maxCommit).Error; err == nil {
			lastSeenID = maxCommit.ID
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				var newCommits []models.Commit
				db.Where("id > ?", lastSeenID).Order("id ASC").Find(&newCommits)
				if len(newCommits) == 0 {
					continue
				}
				lastSeenID = newCommits[len(newCommits)-1].ID

				for _, commit := range newCommits {
					writeSSE(c.Writer, "commit", commitEvent{
						ID:       commit.ID,
						BranchID: commit.BranchID,
						Message:  commit.Message,
						Type:     commit.Type,
					})
				}
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}

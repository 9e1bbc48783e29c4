package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/notify"
	"github.com/sandeepkv93/daycal/internal/storage"
)

const (
	msgInvalidTasks    = "Invalid tasks"
	msgMissingSMS      = "Missing to, date, or tasks"
	msgNotConfigured   = "Twilio is not configured"
	msgSendFailed      = "Failed to send SMS"
	msgRolloverFailed  = "Rollover failed"
	msgSaveTasksFailed = "Failed to save tasks"
	msgSaveLaterFailed = "Failed to save later tasks"
	msgLoadFailed      = "Failed to load tasks"
	msgBodyTooLarge    = "Request body too large"
)

// listBody holds the {"tasks": [...]} envelope; Tasks stays raw so a
// non-array value can be told apart from a malformed one.
type listBody struct {
	Tasks json.RawMessage `json:"tasks"`
}

type smsBody struct {
	To    string          `json:"to"`
	Date  string          `json:"date"`
	Tasks json.RawMessage `json:"tasks"`
}

func isArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

// bindJSON binds the request body and reports whether the handler should
// continue. Oversized bodies get 413; anything else unreadable gets the
// caller's own validation message.
func bindJSON(c *gin.Context, into any, invalid string) bool {
	if err := c.ShouldBindJSON(into); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgBodyTooLarge})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
		return false
	}
	return true
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.repo.ListTasks(c.Request.Context(), storage.TaskListFilter{})
	if err != nil {
		log.Printf("server: list tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgLoadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleSaveTasks(c *gin.Context) {
	var body listBody
	if !bindJSON(c, &body, msgInvalidTasks) {
		return
	}
	if !isArray(body.Tasks) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
		return
	}
	tasks := make([]model.Task, 0)
	if err := json.Unmarshal(body.Tasks, &tasks); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
		return
	}
	if err := storage.ReplaceTasks(c.Request.Context(), s.repo, tasks); err != nil {
		if errors.Is(err, model.ErrInvalidTask) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
			return
		}
		log.Printf("server: save tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSaveTasksFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListLater(c *gin.Context) {
	items, err := s.repo.ListLater(c.Request.Context())
	if err != nil {
		log.Printf("server: list later: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgLoadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

func (s *Server) handleSaveLater(c *gin.Context) {
	var body listBody
	if !bindJSON(c, &body, msgInvalidTasks) {
		return
	}
	if !isArray(body.Tasks) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
		return
	}
	items := make([]model.LaterItem, 0)
	if err := json.Unmarshal(body.Tasks, &items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
		return
	}
	if err := storage.ReplaceLater(c.Request.Context(), s.repo, items); err != nil {
		if errors.Is(err, model.ErrInvalidLater) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidTasks})
			return
		}
		log.Printf("server: save later: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSaveLaterFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSendSMS(c *gin.Context) {
	var body smsBody
	if !bindJSON(c, &body, msgMissingSMS) {
		return
	}
	if strings.TrimSpace(body.To) == "" || strings.TrimSpace(body.Date) == "" || !isArray(body.Tasks) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingSMS})
		return
	}
	items := make([]notify.DigestItem, 0)
	if err := json.Unmarshal(body.Tasks, &items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingSMS})
		return
	}
	if !s.opts.Notifier.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgNotConfigured})
		return
	}
	sid, err := s.opts.Notifier.SendDigest(c.Request.Context(), body.To, body.Date, items)
	if err != nil {
		log.Printf("server: send sms: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSendFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sid": sid})
}

func (s *Server) handleDaily(c *gin.Context) {
	if s.opts.Rollover == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgRolloverFailed})
		return
	}
	res, err := s.opts.Rollover.Rollover(c.Request.Context())
	if err != nil {
		log.Printf("server: rollover: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgRolloverFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"rolled_from": res.From,
		"rolled_to":   res.To,
		"changed":     res.Changed,
	})
}

func (s *Server) handleEnv(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"SUPABASE_URL":      s.opts.SupabaseURL,
		"SUPABASE_ANON_KEY": s.opts.SupabaseAnonKey,
	})
}

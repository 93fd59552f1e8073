package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/reefboard/internal/tasks"
)

type createTaskRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func (s *Server) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Tasks.List())
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	task, err := s.deps.Tasks.Create(req.Title, req.Priority)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var p tasks.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID is required"})
		return
	}
	task, err := s.deps.Tasks.Update(p)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.deps.Tasks.Delete(c.Query("id")); err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tasks.ErrTitleMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
	case errors.Is(err, tasks.ErrIDMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID is required"})
	case errors.Is(err, tasks.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	default:
		slog.Error("tasks", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

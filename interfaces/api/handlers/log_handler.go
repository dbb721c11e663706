package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"face-insight-api/pkg/config"
	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/utils"
)

// LogHandler handles log-related API requests
type LogHandler struct {
	adminToken string
}

// NewLogHandler creates a new log handler
func NewLogHandler(cfg *config.Config) *LogHandler {
	return &LogHandler{
		adminToken: cfg.Admin.Token,
	}
}

// RequireAdmin rejects requests without the configured X-Admin-Token. With
// no token configured every request is rejected.
func (h *LogHandler) RequireAdmin(c *fiber.Ctx) error {
	token := c.Get("X-Admin-Token")
	if token == "" {
		token = c.Query("token")
	}
	if h.adminToken == "" || token != h.adminToken {
		return utils.UnauthorizedResponse(c, "Invalid admin token")
	}
	return c.Next()
}

// GetLogs returns log entries filtered by lines, level, category and search.
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	opts := logger.ReadLogsOptions{
		Lines:    c.QueryInt("lines", 100),
		Level:    logger.Level(c.Query("level")),
		Category: logger.Category(c.Query("category")),
		Search:   c.Query("search"),
	}

	entries, err := logger.ReadLogs(opts)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read logs", err)
	}

	return utils.SuccessResponse(c, "", fiber.Map{
		"entries": entries,
		"count":   len(entries),
		"filters": fiber.Map{
			"lines":    opts.Lines,
			"level":    opts.Level,
			"category": opts.Category,
			"search":   opts.Search,
		},
	})
}

// GetLogFiles returns list of log files
func (h *LogHandler) GetLogFiles(c *fiber.Ctx) error {
	files, err := logger.ListLogFiles()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list log files", err)
	}

	return utils.SuccessResponse(c, "", fiber.Map{
		"files":  files,
		"logDir": logger.GetLogDir(),
	})
}

// GetLogStats returns counts by level and category for today's logs
func (h *LogHandler) GetLogStats(c *fiber.Ctx) error {
	allLogs, _ := logger.ReadLogs(logger.ReadLogsOptions{Lines: 1000})

	levelCounts := map[string]int{
		"DEBUG": 0,
		"INFO":  0,
		"WARN":  0,
		"ERROR": 0,
	}
	categoryCounts := map[string]int{}

	for _, entry := range allLogs {
		levelCounts[string(entry.Level)]++
		categoryCounts[string(entry.Category)]++
	}

	var totalSize int64
	files, _ := logger.ListLogFiles()
	logDir := logger.GetLogDir()
	for _, f := range files {
		if info, err := os.Stat(filepath.Join(logDir, f)); err == nil {
			totalSize += info.Size()
		}
	}

	return utils.SuccessResponse(c, "", fiber.Map{
		"total_entries":    len(allLogs),
		"by_level":         levelCounts,
		"by_category":      categoryCounts,
		"total_files":      len(files),
		"total_size_bytes": totalSize,
	})
}

package file

import (
	"log/slog"

	"github.com/File-Sharing-BondBridg/files-manager/internal/services/command"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services/query"
)

// Handler serves the /files routes.
type Handler struct {
	commands *command.FileCommands
	queries  *query.FileQueries
	logger   *slog.Logger
}

func NewHandler(commands *command.FileCommands, queries *query.FileQueries, logger *slog.Logger) *Handler {
	return &Handler{commands: commands, queries: queries, logger: logger}
}

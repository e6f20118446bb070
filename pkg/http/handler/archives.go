package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/appcontext"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

type ArchiveRepository interface {
	FindLatest(context.Context) ([]backup.BackupArchive, error)
}

// ArchiveMetricHandler reports the latest live archive of every group.
type ArchiveMetricHandler struct {
	logger logrus.FieldLogger
	repo   ArchiveRepository
}

func NewArchiveMetricHandler(logger logrus.FieldLogger, repo ArchiveRepository) *ArchiveMetricHandler {
	return &ArchiveMetricHandler{
		logger: logger,
		repo:   repo,
	}
}

type archiveMetricResponse struct {
	Group         string `json:"group"`
	Identity      string `json:"identity"`
	Format        string `json:"format"`
	ArchiveSize   int64  `json:"archive_size"`
	SourceModTime int64  `json:"source_mtime"`
	CreatedAt     int64  `json:"created_at_mtime"`
}

func (h *ArchiveMetricHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	archives, err := h.repo.FindLatest(ctx)
	if err != nil {
		logger.WithError(err).Error("Unable to query latest archives")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	result := make([]archiveMetricResponse, 0, len(archives))

	for _, a := range archives {
		result = append(result, archiveMetricResponse{
			Group:         a.GroupKey,
			Identity:      a.Identity,
			Format:        a.Format,
			ArchiveSize:   a.SizeBytes,
			SourceModTime: a.SourceModTime.UnixMilli(),
			CreatedAt:     a.CreatedAt.UnixMilli(),
		})
	}

	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	err = enc.Encode(result)
	if err != nil {
		logger.WithError(err).Error("Unable to encode response")
	}
}

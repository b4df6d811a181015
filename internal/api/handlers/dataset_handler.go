package handlers

import (
	"bytes"
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/cache/redis"
	"github.com/dataspeak/backend/internal/ingestion"
	"github.com/dataspeak/backend/internal/metrics"
	"github.com/dataspeak/backend/pkg/logger"
)

type DatasetHandler struct {
	processor *ingestion.Processor
	cache     *redis.Client
	table     string
}

func NewDatasetHandler(processor *ingestion.Processor, cache *redis.Client, table string) *DatasetHandler {
	return &DatasetHandler{
		processor: processor,
		cache:     cache,
		table:     table,
	}
}

// UploadDataset accepts a CSV file as multipart form data or as a raw
// body and loads it into the active dataset table.
func (h *DatasetHandler) UploadDataset(c *fiber.Ctx) error {
	var data []byte

	file, err := c.FormFile("file")
	if err == nil {
		f, err := file.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid uploaded file",
			})
		}
		defer f.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(f); err != nil {
			logger.Error("Failed to read uploaded file", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid uploaded file",
			})
		}
		data = buf.Bytes()
	} else {
		data = c.Body()
	}

	if len(data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CSV content is required",
		})
	}

	summary, err := h.processor.ProcessCSV(bytes.NewReader(data), h.table)
	if err != nil {
		logger.Error("Failed to load dataset", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load dataset",
		})
	}

	metrics.DatasetsLoaded.Inc()
	metrics.DatasetRows.Set(float64(summary.RowCount))

	// Cached answers were computed against the previous dataset.
	if h.cache != nil {
		if err := h.cache.InvalidateResults(context.Background()); err != nil {
			logger.Warn("Failed to invalidate query cache after upload", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"message":   "Dataset loaded successfully",
		"table":     summary.Table,
		"columns":   summary.Columns,
		"row_count": summary.RowCount,
	})
}

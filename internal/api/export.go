package api

import (
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

// ExportAnalysis handles GET /api/v1/analysis/{symbol}/export,
// streaming the analyzed dataset as CSV. Undefined column positions
// are empty cells.
func (h *AnalysisHandler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.csv",
		analysis.Symbol, req.Start.Format(dateLayout), req.End.Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := WriteCSV(w, analysis); err != nil {
		// Headers and part of the body are already on the wire; the
		// client sees a truncated download, all we can do is log
		logger.Error("CSV export write failed",
			logger.String("symbol", analysis.Symbol),
			logger.ErrorField(err),
		)
	}
}

// WriteCSV writes an analysis as CSV: the bar columns followed by the
// computed indicator columns in stable (sorted) order.
func WriteCSV(w interface{ Write(p []byte) (int, error) }, analysis *models.Analysis) error {
	names := make([]string, 0, len(analysis.Columns))
	for name := range analysis.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	header := append([]string{"timestamp", "open", "high", "low", "close", "volume"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, bar := range analysis.Series.Bars {
		row := []string{
			bar.Timestamp.Format(time.RFC3339),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			formatFloat(bar.Volume),
		}
		for _, name := range names {
			v := analysis.Columns[name][i]
			if math.IsNaN(v) {
				row = append(row, "")
			} else {
				row = append(row, formatFloat(v))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package sweep

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
)

// csvHeaders returns the CSV column headers for a device export.
func csvHeaders() []string {
	return []string{"id", "name", "ip", "mac", "type", "status", "signal"}
}

// deviceToCSVRow converts a device to a CSV row (matching csvHeaders order).
func deviceToCSVRow(d models.Device) []string {
	return []string{
		strconv.Itoa(d.ID),
		d.Name,
		d.IP,
		d.MAC,
		string(d.Type),
		string(d.Status),
		strconv.Itoa(d.Signal),
	}
}

// handleDevicesCSV exports the latest sweep's device list as CSV.
func (m *Module) handleDevicesCSV(w http.ResponseWriter, r *http.Request) {
	result := m.sweeper.Last()
	if result == nil {
		var err error
		result, err = m.sweeper.Run(r.Context())
		if err != nil {
			m.logger.Warn("sweep for CSV export failed", zap.Error(err))
			sweepWriteError(w, http.StatusServiceUnavailable, "no sweep result available")
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="devices.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders()); err != nil {
		return
	}
	for _, d := range result.Devices {
		if err := cw.Write(deviceToCSVRow(d)); err != nil {
			return
		}
	}
	cw.Flush()
}

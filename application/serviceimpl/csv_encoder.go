package serviceimpl

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"face-insight-api/domain/dto"
)

// encodeCSV writes the header row followed by one record per row, in
// dto.ExportColumns order. Records end in CRLF as RFC 4180 asks.
func encodeCSV(rows []dto.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(dto.ExportColumns); err != nil {
		return nil, err
	}

	record := make([]string, len(dto.ExportColumns))
	for _, row := range rows {
		record[0] = strconv.FormatInt(row.Time, 10)
		record[1] = strconv.FormatInt(row.BranchID, 10)
		record[2] = strconv.FormatInt(row.CameraID, 10)
		record[3] = row.FilePath
		record[4] = row.Gender
		record[5] = formatFloat(row.GenderConfidence)
		record[6] = strconv.Itoa(row.MaxAge)
		record[7] = strconv.Itoa(row.MinAge)
		record[8] = formatFloat(row.AgeConfidence)
		record[9] = row.Race
		record[10] = formatFloat(row.RaceConfidence)

		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

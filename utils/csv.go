package utils

import (
	"strconv"
	"strings"
	"time"

	"meet-registration-portal/models"
)

var csvHeader = []string{
	"teamId", "name", "gender", "age", "designation", "phone", "blood",
	"ageClass", "vegNon", "sports", "photoBase64", "timestamp", "id", "status",
}

// ParticipantsCSV renders rows as a spreadsheet-ready CSV. Sport lists are
// semicolon-joined inside a single cell and photo payloads are collapsed to
// a marker, keeping exports small enough to open in Excel.
func ParticipantsCSV(rows []models.Participant) string {
	var b strings.Builder
	writeCSVLine(&b, csvHeader)
	for _, row := range rows {
		age := ""
		if row.Age > 0 {
			age = strconv.Itoa(row.Age)
		}
		photo := ""
		if row.PhotoBase64 != "" {
			photo = "[BASE64]"
		}
		ts := ""
		if !row.Timestamp.IsZero() {
			ts = row.Timestamp.UTC().Format(time.RFC3339)
		}
		writeCSVLine(&b, []string{
			row.TeamID,
			row.Name,
			row.Gender,
			age,
			row.Designation,
			row.Phone,
			row.Blood,
			row.AgeClass,
			row.VegNon,
			strings.Join(row.ChosenSports(), ";"),
			photo,
			ts,
			row.ID,
			string(row.Status),
		})
	}
	return b.String()
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVValue(f))
	}
	b.WriteByte('\n')
}

// escapeCSVValue quotes a cell only when it has to, doubling embedded
// quotes per RFC 4180.
func escapeCSVValue(v string) string {
	if strings.ContainsAny(v, ",\"\n\r") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

package service

import (
	"io"
	"strings"

	"github.com/iliyamo/contact-book/internal/model"
)

const csvTimeLayout = "2006-01-02T15:04:05.000Z"

const csvHeader = "Name,Email,Phone,Created At\n"

// writeCSV quotes every value, unlike encoding/csv which only quotes when a
// field needs it. The header line stays bare.
func writeCSV(w io.Writer, rows []model.Contact) {
	_, _ = io.WriteString(w, csvHeader)
	for _, c := range rows {
		writeCSVLine(w, []string{c.Name, c.Email, c.Phone, c.CreatedAt.UTC().Format(csvTimeLayout)})
	}
}

func writeCSVLine(w io.Writer, fields []string) {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(w, b.String())
}

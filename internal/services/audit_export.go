package services

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clubsphere/clubsphere/internal/models"
)

// AuditCSVHeader lists the export columns in order.
var AuditCSVHeader = []string{
	"Log ID",
	"Timestamp",
	"Action",
	"Module",
	"Description",
	"User Name",
	"User Email",
	"User Role",
	"Staff Name",
	"Staff Email",
	"Staff Designation",
	"IP Address",
	"User Agent",
	"Metadata",
}

// ExportFilename names a download produced at the supplied time.
func ExportFilename(at time.Time) string {
	return "audit-logs-" + at.Format("2006-01-02") + ".csv"
}

// ExportAuditCSV renders logs as CSV.
func ExportAuditCSV(logs []models.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAuditCSV(&buf, logs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAuditCSV writes the header and one row per entry. Every field is quoted and embedded quotes
// are doubled, so values containing commas, quotes or newlines survive a round trip.
func WriteAuditCSV(w io.Writer, logs []models.AuditLog) error {
	out := bufio.NewWriter(w)

	if err := writeQuotedRow(out, AuditCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range logs {
		row, err := auditCSVRow(&logs[i])
		if err != nil {
			return err
		}
		if err := writeQuotedRow(out, row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

func auditCSVRow(log *models.AuditLog) ([]string, error) {
	metadata, err := json.Marshal(log.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata for %s: %w", log.ID, err)
	}

	var userName, userEmail, userRole string
	if log.User != nil {
		userName, userEmail, userRole = log.User.Name, log.User.Email, log.User.Role
	}
	if email := log.Metadata.UserEmail; email != "" {
		userEmail = email
	}
	if role := log.Metadata.UserRole; role != "" {
		userRole = role
	}

	var staffName, staffEmail, staffDesignation string
	if log.Staff != nil {
		staffName, staffEmail, staffDesignation = log.Staff.Name, log.Staff.Email, log.Staff.Designation
	}

	return []string{
		log.ID,
		log.CreatedAt.Format(time.RFC3339),
		log.Action,
		log.Module,
		log.Description,
		userName,
		userEmail,
		userRole,
		staffName,
		staffEmail,
		staffDesignation,
		log.IPAddress,
		log.UserAgent,
		string(metadata),
	}, nil
}

func writeQuotedRow(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

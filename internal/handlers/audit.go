package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/auditlog"
	"github.com/clubsphere/clubsphere/internal/models"
	"github.com/clubsphere/clubsphere/internal/services"
	appErrors "github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/response"
)

const (
	dateOnlyLayout = "2006-01-02"
	csvContentType = "text/csv; charset=utf-8"
)

type AuditHandler struct {
	svc *services.AuditService
	now func() time.Time
}

func NewAuditHandler(svc *services.AuditService) (*AuditHandler, error) {
	if svc == nil {
		return nil, errors.New("audit handler: service is required")
	}
	return &AuditHandler{svc: svc, now: time.Now}, nil
}

// GET /api/audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", services.DefaultAuditPageSize)

	result, err := h.svc.List(requestContext(c), page, limit)
	if err != nil {
		writeAuditError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Logs, response.NewMeta(result.Page, result.PageSize, result.Total))
}

// GET /api/audit-logs/search
func (h *AuditHandler) Search(c *gin.Context) {
	query, err := auditQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.svc.Search(requestContext(c), services.SearchCriteria{
		AuditQuery: query,
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "limit", services.DefaultAuditPageSize),
	})
	if err != nil {
		writeAuditError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Logs, response.NewMeta(result.Page, result.PageSize, result.Total))
}

// GET /api/audit-logs/export
func (h *AuditHandler) Export(c *gin.Context) {
	query, err := auditQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := requestContext(c)
	logs, err := h.svc.Export(ctx, query)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	body, err := services.ExportAuditCSV(logs)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	extra := exportFilters(query)
	extra["rows"] = len(logs)
	if err := h.svc.Log(ctx, services.AuditEntry{
		Action:    models.AuditActionExport,
		Module:    "audit-logs",
		Detail:    fmt.Sprintf("exported %d audit entries", len(logs)),
		IPAddress: auditlog.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
		Extra:     extra,
	}); err != nil {
		_ = c.Error(fmt.Errorf("record export: %w", err))
	}
	response.Attachment(c, services.ExportFilename(h.now()), csvContentType, body)
}

// GET /api/audit-logs/stats
func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(requestContext(c))
	if err != nil {
		writeAuditError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func auditQueryFromRequest(c *gin.Context) (services.AuditQuery, error) {
	query := services.AuditQuery{
		UserID:   c.Query("user_id"),
		StaffID:  c.Query("staff_id"),
		Action:   c.Query("action"),
		Module:   c.Query("module"),
		Role:     c.Query("role"),
		Keywords: c.Query("keywords"),
	}

	start, err := parseDateQuery(c.Query("start_date"), false)
	if err != nil {
		return services.AuditQuery{}, appErrors.NewBadRequest("start_date must be RFC3339 or YYYY-MM-DD")
	}
	end, err := parseDateQuery(c.Query("end_date"), true)
	if err != nil {
		return services.AuditQuery{}, appErrors.NewBadRequest("end_date must be RFC3339 or YYYY-MM-DD")
	}
	query.StartDate = start
	query.EndDate = end
	return query, nil
}

// exportFilters lists the filters an export applied, keyed by their query parameter names.
func exportFilters(query services.AuditQuery) map[string]any {
	filters := map[string]any{}
	for key, value := range map[string]string{
		"user_id":  query.UserID,
		"staff_id": query.StaffID,
		"action":   query.Action,
		"module":   query.Module,
		"role":     query.Role,
		"keywords": query.Keywords,
	} {
		if value = strings.TrimSpace(value); value != "" {
			filters[key] = value
		}
	}
	if query.StartDate != nil {
		filters["start_date"] = query.StartDate.UTC().Format(time.RFC3339Nano)
	}
	if query.EndDate != nil {
		filters["end_date"] = query.EndDate.UTC().Format(time.RFC3339Nano)
	}
	return filters
}

// parseDateQuery accepts RFC3339 timestamps or calendar dates (UTC). A calendar date used as an
// upper bound covers the whole day.
func parseDateQuery(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func writeAuditError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidDateRange) {
		response.Error(c, appErrors.NewBadRequest("start_date must not be after end_date"))
		return
	}
	response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
}

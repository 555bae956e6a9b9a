package auditlog

import (
	"net/http"
	"strings"

	"github.com/clubsphere/clubsphere/internal/models"
)

// UnknownModule is used when a path carries no usable segment.
const UnknownModule = "unknown"

// ActionFromMethod maps an HTTP method onto an audit action. Methods without a mapping are
// returned verbatim.
func ActionFromMethod(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate
	case http.MethodDelete:
		return models.AuditActionDelete
	case http.MethodGet:
		return models.AuditActionRead
	default:
		return method
	}
}

// Describe renders the human readable description stored with each entry.
func Describe(method, path string) string {
	return method + " " + stripQuery(path)
}

// ModuleFromPath derives the functional area of a request path relative to the API base path.
//
//	/biometric/attendance/7 -> biometric/attendance
//	/masters/batch/3        -> batch
//	/cms/banners            -> banners
//	/members/42             -> members
func ModuleFromPath(path string) string {
	segments := pathSegments(path)
	if len(segments) == 0 {
		return UnknownModule
	}

	switch segments[0] {
	case "biometric":
		if len(segments) > 1 {
			return "biometric/" + segments[1]
		}
		return "biometric"
	case "masters", "cms":
		if len(segments) > 1 {
			return segments[1]
		}
	}
	return segments[0]
}

// CollectionFromPath returns the storage collection a path addresses. It follows ModuleFromPath
// except that biometric resources live in flat "biometric_<name>" collections.
func CollectionFromPath(path string) string {
	module := ModuleFromPath(path)
	if module == UnknownModule {
		return ""
	}
	return strings.ReplaceAll(module, "/", "_")
}

// TrimBasePath removes the API prefix from path so module derivation sees the resource segment
// first.
func TrimBasePath(path, base string) string {
	path = stripQuery(path)
	base = strings.TrimRight(base, "/")
	if base == "" {
		return path
	}
	if path == base {
		return "/"
	}
	if strings.HasPrefix(path, base+"/") {
		return path[len(base):]
	}
	return path
}

func pathSegments(path string) []string {
	parts := strings.Split(stripQuery(path), "/")
	segments := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func stripQuery(path string) string {
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		return path[:idx]
	}
	return path
}

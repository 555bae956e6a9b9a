package auditlog

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/clubsphere/clubsphere/internal/models"
)

// TimestampLayout is the ISO-8601 layout of metadata.timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Outcome describes how a request finished.
type Outcome struct {
	Actor        Actor
	StatusCode   int
	IPAddress    string
	UserAgent    string
	ResponseBody []byte
	ErrorMessage string
	At           time.Time
}

// BuildRecord assembles the entry for a completed request. Update payloads are only attached when
// the action is UPDATE.
func BuildRecord(state *RequestState, outcome Outcome) *models.AuditLog {
	if state == nil {
		return nil
	}

	at := outcome.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	action := ActionFromMethod(state.Method)
	module := state.Module
	if module == "" {
		module = ModuleFromPath(state.Path)
	}

	errorMessage := strings.TrimSpace(outcome.ErrorMessage)
	if errorMessage == "" && outcome.StatusCode >= 400 {
		errorMessage = responseErrorMessage(outcome.ResponseBody)
	}

	entry := &models.AuditLog{
		ActorID:     outcome.Actor.ID,
		Action:      action,
		Module:      module,
		Description: Describe(state.Method, state.Path),
		IPAddress:   outcome.IPAddress,
		UserAgent:   outcome.UserAgent,
		CreatedAt:   at,
		Metadata: models.AuditMetadata{
			Method:         state.Method,
			Path:           state.Path,
			Params:         paramsMap(state.Params),
			Query:          queryMap(state.Query),
			StatusCode:     outcome.StatusCode,
			UserRole:       outcome.Actor.Role,
			UserEmail:      outcome.Actor.Email,
			LoginType:      outcome.Actor.LoginType,
			AttemptedEmail: attemptedEmail(state.RequestBody, outcome.StatusCode),
			ErrorMessage:   errorMessage,
			Timestamp:      at.UTC().Format(TimestampLayout),
		},
	}
	if staffID := strings.TrimSpace(outcome.Actor.StaffID); staffID != "" {
		entry.StaffActorID = &staffID
	}

	if action == models.AuditActionUpdate {
		original, request, updated := FinalizeUpdate(state.Prior, state.RequestBody, outcome.ResponseBody)
		entry.Metadata.OriginalData = jsonMap(original)
		entry.Metadata.RequestBody = jsonMap(request)
		entry.Metadata.UpdatedData = jsonMap(updated)
	}

	return entry
}

// attemptedEmail is the email a rejected write tried to use. Successful requests report none.
func attemptedEmail(body map[string]any, status int) string {
	if status < 400 {
		return ""
	}
	email, _ := body["email"].(string)
	return strings.TrimSpace(email)
}

func paramsMap(params map[string]string) datatypes.JSONMap {
	if len(params) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}

// queryMap keeps single values as strings and repeated values as lists.
func queryMap(query map[string][]string) datatypes.JSONMap {
	if len(query) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(query))
	for key, values := range query {
		switch len(values) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = values[0]
		default:
			list := make([]any, len(values))
			for i, value := range values {
				list[i] = value
			}
			out[key] = list
		}
	}
	return out
}

func jsonMap(payload map[string]any) datatypes.JSONMap {
	if payload == nil {
		return nil
	}
	return datatypes.JSONMap(payload)
}

func responseErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}

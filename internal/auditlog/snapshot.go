package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clubsphere/clubsphere/pkg/logger"
)

// Snapshotter loads the current state of a stored resource as a generic document. Implementations
// return nil, nil when the record does not exist.
type Snapshotter interface {
	Find(ctx context.Context, collection, id string) (map[string]any, error)
}

// ResourceID extracts the identifier of the resource being modified, preferring the body over
// route params: body "_id", body "id", param "id", param "_id".
func ResourceID(body map[string]any, params map[string]string) string {
	for _, key := range []string{"_id", "id"} {
		if id := scalarString(body[key]); id != "" {
			return id
		}
	}
	for _, key := range []string{"id", "_id"} {
		if id := strings.TrimSpace(params[key]); id != "" {
			return id
		}
	}
	return ""
}

// Snapshot captures the pre-mutation state of the resource addressed by path. Every failure is
// swallowed and reported as nil; a missing snapshot never blocks the request.
func Snapshot(ctx context.Context, store Snapshotter, path string, body map[string]any, params map[string]string) (doc map[string]any) {
	if store == nil {
		return nil
	}

	collection := CollectionFromPath(path)
	id := ResourceID(body, params)
	if collection == "" || id == "" {
		return nil
	}

	log := logger.WithModule("audit").With(zap.String("collection", collection), zap.String("resource_id", id))
	defer func() {
		if r := recover(); r != nil {
			log.Warn("snapshot panicked", zap.Any("panic", r))
			doc = nil
		}
	}()

	found, err := store.Find(ctx, collection, id)
	if err != nil {
		log.Debug("snapshot unavailable", zap.Error(err))
		return nil
	}
	return found
}

// FinalizeUpdate produces the three redacted payloads stored with an UPDATE entry. The updated
// state is the request body shallow-merged over the resource carried by the response: the
// envelope's "data" object when present, otherwise the whole decoded body unless it is an
// envelope without data.
func FinalizeUpdate(prior, requestBody map[string]any, responseBody []byte) (original, request, updated map[string]any) {
	resource := responseResource(responseBody)

	merged := make(map[string]any, len(resource)+len(requestBody))
	for key, value := range resource {
		merged[key] = value
	}
	for key, value := range requestBody {
		merged[key] = value
	}
	if len(merged) == 0 {
		merged = nil
	}

	return Redact(prior), Redact(requestBody), Redact(merged)
}

func responseResource(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil
	}
	if data, ok := decoded["data"].(map[string]any); ok {
		return data
	}
	if _, enveloped := decoded["success"]; enveloped {
		return nil
	}
	return decoded
}

// Field change kinds reported by DiffFields.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeChanged = "changed"
)

// FieldChange is a single top-level difference between two documents.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old,omitempty"`
	New   any    `json:"new,omitempty"`
	Kind  string `json:"kind"`
}

// DiffFields compares two documents key by key, ordered by field name. Sensitive keys are
// reported with redacted values.
func DiffFields(before, after map[string]any) []FieldChange {
	before, after = Redact(before), Redact(after)

	keys := make(map[string]struct{}, len(before)+len(after))
	for key := range before {
		keys[key] = struct{}{}
	}
	for key := range after {
		keys[key] = struct{}{}
	}

	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, key)
	}
	sort.Strings(names)

	var changes []FieldChange
	for _, name := range names {
		oldValue, hadOld := before[name]
		newValue, hasNew := after[name]
		switch {
		case !hadOld:
			changes = append(changes, FieldChange{Field: name, New: newValue, Kind: ChangeAdded})
		case !hasNew:
			changes = append(changes, FieldChange{Field: name, Old: oldValue, Kind: ChangeRemoved})
		case !reflect.DeepEqual(normalise(oldValue), normalise(newValue)):
			changes = append(changes, FieldChange{Field: name, Old: oldValue, New: newValue, Kind: ChangeChanged})
		}
	}
	return changes
}

// normalise round-trips a value through JSON so typed snapshots compare equal to decoded bodies.
func normalise(value any) any {
	encoded, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return value
	}
	return out
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubsphere/clubsphere/internal/auditlog"
	"github.com/clubsphere/clubsphere/internal/models"
	"github.com/clubsphere/clubsphere/pkg/logger"
	"github.com/clubsphere/clubsphere/pkg/metrics"
)

// DefaultBodyCaptureLimit bounds how much of a response body is copied for auditing.
const DefaultBodyCaptureLimit = 1 << 20

// DefaultAuditExcludePaths are never audited.
var DefaultAuditExcludePaths = []string{"/health", "/metrics", "/favicon.ico"}

// EntryDispatcher hands finished entries to storage without blocking.
type EntryDispatcher interface {
	Dispatch(entry *models.AuditLog)
}

// AuditOptions configures the Audit middleware.
type AuditOptions struct {
	Dispatcher  EntryDispatcher
	Snapshotter auditlog.Snapshotter
	// BasePath is stripped before the module and collection are derived, e.g. "/api".
	BasePath string
	// ExcludePaths are path prefixes passed through untouched. Nil selects
	// DefaultAuditExcludePaths.
	ExcludePaths     []string
	ExcludeMethods   []string
	BodyCaptureLimit int
}

// Audit records one entry per request once the response has been produced. Updates (PUT/PATCH)
// additionally capture the request body and the resource state before the handler runs. Requests
// without a resolvable actor are passed through without an entry.
func Audit(opts AuditOptions) gin.HandlerFunc {
	excludePaths := opts.ExcludePaths
	if excludePaths == nil {
		excludePaths = DefaultAuditExcludePaths
	}
	excludeMethods := make(map[string]struct{}, len(opts.ExcludeMethods))
	for _, method := range opts.ExcludeMethods {
		excludeMethods[strings.ToUpper(strings.TrimSpace(method))] = struct{}{}
	}
	limit := opts.BodyCaptureLimit
	if limit <= 0 {
		limit = DefaultBodyCaptureLimit
	}
	log := logger.WithModule("audit")

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if opts.Dispatcher == nil || isExcludedPath(path, excludePaths) {
			c.Next()
			return
		}
		if _, skip := excludeMethods[c.Request.Method]; skip {
			c.Next()
			return
		}

		relative := auditlog.TrimBasePath(path, opts.BasePath)
		state := auditlog.NewRequestState(c.Request.Method, path)
		state.Module = auditlog.ModuleFromPath(relative)
		state.Params = routeParams(c.Params)
		state.Query = copyQuery(c.Request.URL.Query())

		if isUpdate(c.Request.Method) {
			state.Advance(auditlog.PhaseCapturingPrior)
			state.RequestBody = readJSONBody(c, log)
			// Anonymous requests are never recorded; skip the prior-state read.
			if _, ok := auditlog.ResolveActor(c); ok {
				state.Prior = auditlog.Snapshot(c.Request.Context(), opts.Snapshotter, relative, state.RequestBody, state.Params)
			}
		} else if c.Request.Method == http.MethodPost {
			state.RequestBody = readJSONBody(c, log)
		}

		capture := newCaptureWriter(c.Writer, limit)
		c.Writer = capture
		state.Advance(auditlog.PhaseAwaitingResponse)

		finish := func(status int, errorMessage string) {
			state.Complete(func() {
				actor, ok := auditlog.ResolveActor(c)
				if !ok {
					metrics.AuditWrites.WithLabelValues("skipped").Inc()
					return
				}
				opts.Dispatcher.Dispatch(auditlog.BuildRecord(state, auditlog.Outcome{
					Actor:        actor,
					StatusCode:   status,
					IPAddress:    auditlog.ClientIP(c),
					UserAgent:    c.Request.UserAgent(),
					ResponseBody: capture.Body(),
					ErrorMessage: errorMessage,
					At:           time.Now(),
				}))
			})
		}

		defer func() {
			if r := recover(); r != nil {
				finish(http.StatusInternalServerError, "panic during request handling")
				panic(r)
			}
		}()

		c.Next()

		var errorMessage string
		if last := c.Errors.Last(); last != nil {
			errorMessage = last.Error()
		}
		finish(capture.Status(), errorMessage)
	}
}

func isExcludedPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isUpdate(method string) bool {
	return method == http.MethodPut || method == http.MethodPatch
}

// readJSONBody reads the request body, restores it for the handler and returns a private copy of
// it when it is a JSON object.
func readJSONBody(c *gin.Context, log *zap.Logger) map[string]any {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		log.Debug("failed to read request body", zap.Error(err))
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}

func routeParams(params gin.Params) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for _, param := range params {
		out[param.Key] = param.Value
	}
	return out
}

func copyQuery(query map[string][]string) map[string][]string {
	if len(query) == 0 {
		return nil
	}
	out := make(map[string][]string, len(query))
	for key, values := range query {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// captureWriter tees the response body into a bounded buffer without altering what the client
// receives.
type captureWriter struct {
	gin.ResponseWriter
	buf   bytes.Buffer
	limit int
}

func newCaptureWriter(w gin.ResponseWriter, limit int) *captureWriter {
	return &captureWriter{ResponseWriter: w, limit: limit}
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.capture(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *captureWriter) capture(b []byte) {
	if remaining := w.limit - w.buf.Len(); remaining > 0 {
		if len(b) > remaining {
			b = b[:remaining]
		}
		w.buf.Write(b)
	}
}

// Body returns the captured prefix of the response body.
func (w *captureWriter) Body() []byte {
	return w.buf.Bytes()
}

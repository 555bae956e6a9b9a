package models

import "errors"

// ErrAuditLogImmutable is returned by gorm hooks when an audit entry would be changed.
var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

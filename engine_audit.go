package goFlow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventSubmit      = "flow_submit"
	auditEventValidation  = "flow_validation"
	auditEventRestart     = "flow_restart"
	auditEventRedirect    = "flow_redirect"
	auditEventFlowError   = "flow_error"
	auditEventCodeConfirm = "code_confirm"
	auditEventLogout      = "logout"
)

// AuditErrorCode is the coarse failure reason recorded in [AuditEvent.Error].
// Raw provider messages are never copied into audit events.
type AuditErrorCode string

const (
	auditErrValidation   AuditErrorCode = "validation"
	auditErrExpired      AuditErrorCode = "flow_expired"
	auditErrRedirect     AuditErrorCode = "redirect"
	auditErrMalformed    AuditErrorCode = "malformed_response"
	auditErrSuperseded   AuditErrorCode = "superseded"
	auditErrLogoutFailed AuditErrorCode = "logout_failed"
	auditErrCanceled     AuditErrorCode = "canceled"
	auditErrInternal     AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	flowID string,
	flowType string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		FlowID:    flowID,
		FlowType:  flowType,
		RequestID: requestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSuperseded):
		return auditErrSuperseded
	case errors.Is(err, ErrLogoutFailed):
		return auditErrLogoutFailed
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	}

	switch Classify(err) {
	case ClassValidation:
		return auditErrValidation
	case ClassExpired:
		return auditErrExpired
	case ClassRedirect:
		return auditErrRedirect
	case ClassMalformed:
		return auditErrMalformed
	default:
		return auditErrInternal
	}
}

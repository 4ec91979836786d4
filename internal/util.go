package internal

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"
)

// logAction records an audit entry. Failures are logged and otherwise
// ignored.
func logAction(ctx context.Context, audit AuditLog, log *slog.Logger, actorID *string, action, details string) {
	if err := audit.LogAction(context.WithoutCancel(ctx), actorID, action, details); err != nil {
		log.WarnContext(ctx, "audit log write failed", "action", action, "error", err)
	}
}

// deviceLabel summarizes a User-Agent as "browser version / os".
func deviceLabel(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "desconocido"
	}
	p := useragent.New(ua)
	name, version := p.Browser()
	label := strings.TrimSpace(name + " " + version)
	if os := p.OS(); os != "" {
		label += " / " + os
	}
	if p.Mobile() {
		label += " (móvil)"
	}
	if p.Bot() {
		label += " (bot)"
	}
	return label
}

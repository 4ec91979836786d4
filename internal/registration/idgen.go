package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"bjj-tournament/internal/models"
)

// IDGenerator produces human-readable registration IDs.
type IDGenerator struct {
	seq Sequencer
	log *slog.Logger
	now func() time.Time
}

func NewIDGenerator(seq Sequencer, log *slog.Logger) *IDGenerator {
	return &IDGenerator{seq: seq, log: log, now: time.Now}
}

// FormatID renders TORNEO-<prefix>-<n zero-padded to five digits>.
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("TORNEO-%s-%05d", prefix, n)
}

// Generate never fails. When the sequencer is unavailable it falls back to
// <prefix>-<last five digits of the unix millisecond clock>.
func (g *IDGenerator) Generate(ctx context.Context, kind models.Kind) string {
	n, err := g.seq.NextSequence(ctx, kind)
	if err == nil && n > 0 {
		return FormatID(kind.Prefix(), n)
	}
	id := fallbackID(kind.Prefix(), g.now())
	g.log.WarnContext(ctx, "registration sequence unavailable, using fallback id",
		"type", kind, "registration_id", id, "error", err, "sequence", n)
	return id
}

func fallbackID(prefix string, now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 5 {
		ms = ms[len(ms)-5:]
	}
	return prefix + "-" + ms
}

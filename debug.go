package legacygfx

import "log/slog"

// FrameStats counts the batching work of one frame.
type FrameStats struct {
	DrawCalls int
	Quads     int
	// Dropped counts draws of deleted sprites.
	Dropped int
	Flushes [numFlushCauses]int
}

// Stats returns the statistics of the last presented frame.
func (r *Renderer) Stats() FrameStats { return r.lastStats }

// QuadsPerDraw is the average batch size.
func (s FrameStats) QuadsPerDraw() float64 {
	if s.DrawCalls == 0 {
		return 0
	}
	return float64(s.Quads) / float64(s.DrawCalls)
}

var flushCauseNames = [numFlushCauses]string{
	flushAtlas:     "atlas",
	flushBlend:     "blend",
	flushFilter:    "filter",
	flushTransform: "transform",
	flushViewport:  "viewport",
	flushTarget:    "target",
	flushClear:     "clear",
	flushReadback:  "readback",
	flushFull:      "full",
	flushFrame:     "frame",
}

func (c flushCause) String() string {
	if c < numFlushCauses {
		return flushCauseNames[c]
	}
	return "unknown"
}

// endFrame rolls the frame counters over and logs them in debug mode.
func (r *Renderer) endFrame() {
	r.lastStats = r.stats
	r.stats = FrameStats{}
	if r.cfg.Debug {
		r.debugLog(r.lastStats)
	}
}

func (r *Renderer) debugLog(stats FrameStats) {
	flushes := make([]any, 0, numFlushCauses)
	for c, n := range stats.Flushes {
		if n > 0 {
			flushes = append(flushes, slog.Int(flushCause(c).String(), n))
		}
	}
	Logger().Debug("legacygfx: frame",
		slog.Int("draw_calls", stats.DrawCalls),
		slog.Int("quads", stats.Quads),
		slog.Int("dropped", stats.Dropped),
		slog.Float64("quads_per_draw", stats.QuadsPerDraw()),
		slog.Group("flushes", flushes...))
}

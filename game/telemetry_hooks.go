package game

import "log/slog"

// flushTelemetry writes the stats window once it is complete.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.scene.System)
	stats.Scenario = g.scenarioID
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteWindow(stats, perfStats); err != nil {
		slog.Error("failed to write telemetry", "window_end", stats.WindowEndStep, "error", err)
	}
}

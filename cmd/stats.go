package cmd

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/achilleasa/raylive/renderer"
)

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	writeFrameStats(&buf, stats)
	logger.Noticef("frame statistics\n%s", buf.String())
}

func writeFrameStats(w io.Writer, stats renderer.FrameStats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
}

func displaySessionStats(stats renderer.SessionStats, wallTime time.Duration) {
	var buf bytes.Buffer
	writeSessionStats(&buf, stats, wallTime)
	logger.Noticef("session statistics\n%s", buf.String())
}

func writeSessionStats(w io.Writer, stats renderer.SessionStats, wallTime time.Duration) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Issued", "Presented", "Discarded", "Min", "Avg", "Max", "Wall time", "Frames/s"})

	var fps float64
	if wallTime > 0 {
		fps = float64(stats.Presented) / wallTime.Seconds()
	}
	table.Append([]string{
		fmt.Sprintf("%d", stats.Issued),
		fmt.Sprintf("%d", stats.Presented),
		fmt.Sprintf("%d", stats.Discarded),
		stats.MinRenderTime.String(),
		stats.AvgRenderTime().String(),
		stats.MaxRenderTime.String(),
		wallTime.Round(time.Millisecond).String(),
		fmt.Sprintf("%.1f", fps),
	})

	table.Render()
}

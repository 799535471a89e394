package tui

import (
	"strconv"
	"strings"

	"github.com/aristath/miniplan/internal/scheduler"
)

// Glyphs used by the chart. Each kind has its own glyph so the chart stays
// readable without color.
const (
	GlyphCritical  = '█'
	GlyphNormal    = '▓'
	GlyphFloat     = '░'
	GlyphMilestone = '◆'
	GlyphGrid      = '┊'
)

const (
	defaultLabelWidth = 18
	defaultDayWidth   = 3
	defaultMinDays    = 20
	gridEvery         = 5
)

const emptyGanttText = "No scheduled data.\nAdd activities and press r to compute the CPM."

// GanttOptions controls RenderGantt. Zero fields take defaults.
type GanttOptions struct {
	DayWidth   int // Cells per time unit
	MinDays    int // Minimum timeline length
	LabelWidth int // Width of the activity label column
	Width      int // Total width available; 0 draws the whole timeline
	Offset     int // First time unit shown when the timeline is clipped
}

func (o GanttOptions) withDefaults() GanttOptions {
	if o.DayWidth <= 0 {
		o.DayWidth = defaultDayWidth
	}
	if o.MinDays <= 0 {
		o.MinDays = defaultMinDays
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = defaultLabelWidth
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// GanttSpan returns the number of time units the chart draws for acts:
// two units past the project end, and at least minDays.
func GanttSpan(acts []*scheduler.Activity, minDays int) int {
	end := 0
	for _, a := range acts {
		if a.EF > end {
			end = a.EF
		}
	}
	return max(end+2, minDays)
}

// GanttLegend returns the one-line color key.
func GanttLegend() string {
	return StyleGanttCritical.Render(string([]rune{GlyphCritical, GlyphCritical})) + " Critical Path  " +
		StyleGanttNormal.Render(string([]rune{GlyphNormal, GlyphNormal})) + " Normal  " +
		StyleGanttFloat.Render(string([]rune{GlyphFloat, GlyphFloat})) + " Float"
}

// RenderGantt draws acts, one row each in the given order, under a timeline
// header numbered every five units. Bars span ES to EF; the float that
// follows runs from EF to LF. Activities that were never scheduled get a
// label but no bar.
func RenderGantt(acts []*scheduler.Activity, opts GanttOptions) string {
	if len(acts) == 0 {
		return StyleGanttEmpty.Render(emptyGanttText)
	}
	opts = opts.withDefaults()

	total := GanttSpan(acts, opts.MinDays)
	first, last := visibleDays(total, opts)

	lines := make([]string, 0, len(acts)+1)
	lines = append(lines, renderHeader(first, last, opts))
	for _, a := range acts {
		lines = append(lines, renderRow(a, first, last, opts))
	}
	return strings.Join(lines, "\n")
}

// visibleDays returns the half-open range of time units that fit.
func visibleDays(total int, opts GanttOptions) (int, int) {
	if opts.Width <= 0 {
		return 0, total
	}
	fit := max((opts.Width-opts.LabelWidth)/opts.DayWidth, 1)
	if fit >= total {
		return 0, total
	}
	first := min(opts.Offset, total-fit)
	return first, first + fit
}

func renderHeader(first, last int, opts GanttOptions) string {
	timeline := []rune(strings.Repeat(" ", (last-first)*opts.DayWidth))
	for d := first; d < last; d++ {
		if d%gridEvery != 0 {
			continue
		}
		pos := (d - first) * opts.DayWidth
		for i, r := range strconv.Itoa(d) {
			if pos+i < len(timeline) {
				timeline[pos+i] = r
			}
		}
	}
	return StyleGanttHeader.Render(fitLabel("Activity", opts.LabelWidth) + string(timeline))
}

// cellKind is what a single time unit of a row shows.
type cellKind int

const (
	cellBlank cellKind = iota
	cellGrid
	cellBar
	cellFloat
	cellMilestone
)

func renderRow(a *scheduler.Activity, first, last int, opts GanttOptions) string {
	var b strings.Builder
	b.WriteString(StyleGanttLabel.Render(fitLabel(a.ID+" "+a.Name, opts.LabelWidth)))

	scheduled := !(a.ES == 0 && a.EF == 0 && a.LF == 0 && a.Duration > 0)
	barStyle, barGlyph := StyleGanttNormal, GlyphNormal
	if a.IsCritical {
		barStyle, barGlyph = StyleGanttCritical, GlyphCritical
	}

	// Consecutive cells of one kind are styled as a single run.
	var run strings.Builder
	runKind := cellKind(-1)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch runKind {
		case cellBar, cellMilestone:
			b.WriteString(barStyle.Render(run.String()))
		case cellFloat:
			b.WriteString(StyleGanttFloat.Render(run.String()))
		case cellGrid:
			b.WriteString(StyleGanttGrid.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		run.Reset()
	}

	for d := first; d < last; d++ {
		kind := cellAt(a, d, scheduled)
		if kind != runKind {
			flush()
			runKind = kind
		}
		run.WriteString(cellText(kind, barGlyph, opts.DayWidth))
	}
	flush()
	return b.String()
}

func cellAt(a *scheduler.Activity, d int, scheduled bool) cellKind {
	switch {
	case scheduled && a.Duration == 0 && d == a.ES:
		return cellMilestone
	case scheduled && d >= a.ES && d < a.EF:
		return cellBar
	case scheduled && a.TotalFloat > 0 && d >= a.EF && d < a.LF:
		return cellFloat
	case d%gridEvery == 0:
		return cellGrid
	default:
		return cellBlank
	}
}

func cellText(kind cellKind, barGlyph rune, width int) string {
	switch kind {
	case cellBar:
		return strings.Repeat(string(barGlyph), width)
	case cellFloat:
		return strings.Repeat(string(GlyphFloat), width)
	case cellMilestone:
		return string(GlyphMilestone) + strings.Repeat(" ", width-1)
	case cellGrid:
		return string(GlyphGrid) + strings.Repeat(" ", width-1)
	default:
		return strings.Repeat(" ", width)
	}
}

// fitLabel truncates s to leave a one-cell gutter and pads it to width.
func fitLabel(s string, width int) string {
	r := []rune(s)
	if len(r) > width-1 {
		if width > 2 {
			r = append(r[:width-2], '…')
		} else {
			r = r[:max(width-1, 0)]
		}
	}
	return string(r) + strings.Repeat(" ", width-len(r))
}

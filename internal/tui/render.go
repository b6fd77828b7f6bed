package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/rehab/internal/engine"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2.0

type cellKind int

const (
	cellEmpty cellKind = iota
	cellParticleFading
	cellParticle
	cellTarget
	cellTargetBright
	cellActor
)

var (
	actorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FC3F7"))
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935"))
	targetHiStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8A80"))
	particleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54F"))
	fadingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8D6E63"))
	arenaStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5C6BC0"))
	hudStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bannerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD54F")).
			Border(lipgloss.DoubleBorder()).Padding(1, 4)
)

type glyphs struct {
	actor, target, targetHi, particle, fading rune
}

// cellGlyphs falls back to ASCII when block characters render double width.
var cellGlyphs = func() glyphs {
	g := glyphs{actor: '█', target: '▒', targetHi: '▓', particle: '*', fading: '·'}
	narrow := func(r, fallback rune) rune {
		if runewidth.RuneWidth(r) != 1 {
			return fallback
		}
		return r
	}
	g.actor = narrow(g.actor, '@')
	g.target = narrow(g.target, 'o')
	g.targetHi = narrow(g.targetHi, 'O')
	g.fading = narrow(g.fading, '.')
	return g
}()

// arenaSize fits the arena into the available cells keeping its aspect.
func arenaSize(arena engine.Bounds, maxCols, maxRows int) (int, int) {
	if maxCols < 1 || maxRows < 1 || arena.W <= 0 || arena.H <= 0 {
		return 0, 0
	}
	ratio := arena.W / arena.H * cellAspect
	cols := maxCols
	rows := int(float64(cols) / ratio)
	if rows > maxRows {
		rows = maxRows
		cols = int(float64(rows) * ratio)
	}
	return max(cols, 1), max(rows, 1)
}

// renderArena rasterizes a snapshot into cols x rows cells.
func renderArena(snap engine.Snapshot, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]cellKind, rows)
	for y := range grid {
		grid[y] = make([]cellKind, cols)
	}
	sx := float64(cols) / snap.Arena.W
	sy := float64(rows) / snap.Arena.H

	for _, p := range snap.Particles {
		x, y := int(p.Pos.X*sx), int(p.Pos.Y*sy)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		kind := cellParticleFading
		if p.Life > 0.5 {
			kind = cellParticle
		}
		grid[y][x] = max(grid[y][x], kind)
	}
	targetKind := cellTarget
	if snap.Target.Pulse() > 0.5 {
		targetKind = cellTargetBright
	}
	fillDisc(grid, snap.Target.Pos, snap.Target.Radius(), sx, sy, targetKind)
	fillDisc(grid, snap.Actor.Pos, snap.Actor.Radius(), sx, sy, cellActor)

	lines := make([]string, rows)
	for y, row := range grid {
		lines[y] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

// fillDisc marks every cell whose centre lies inside the circle. The cell
// under the centre is always marked so small bodies stay visible.
func fillDisc(grid [][]cellKind, c engine.Vector2, r, sx, sy float64, kind cellKind) {
	rows, cols := len(grid), len(grid[0])
	cx, cy := c.X*sx, c.Y*sy
	rx, ry := math.Max(r*sx, 0.5), math.Max(r*sy, 0.5)
	for y := max(0, int(cy-ry)); y <= min(rows-1, int(cy+ry)); y++ {
		for x := max(0, int(cx-rx)); x <= min(cols-1, int(cx+rx)); x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				grid[y][x] = max(grid[y][x], kind)
			}
		}
	}
	x := min(max(int(cx), 0), cols-1)
	y := min(max(int(cy), 0), rows-1)
	grid[y][x] = max(grid[y][x], kind)
}

// renderRow styles runs of equal cells together to keep escape codes short.
func renderRow(row []cellKind) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i] == row[start] {
			continue
		}
		b.WriteString(renderRun(row[start], i-start))
		start = i
	}
	return b.String()
}

func renderRun(kind cellKind, n int) string {
	switch kind {
	case cellActor:
		return actorStyle.Render(strings.Repeat(string(cellGlyphs.actor), n))
	case cellTargetBright:
		return targetHiStyle.Render(strings.Repeat(string(cellGlyphs.targetHi), n))
	case cellTarget:
		return targetStyle.Render(strings.Repeat(string(cellGlyphs.target), n))
	case cellParticle:
		return particleStyle.Render(strings.Repeat(string(cellGlyphs.particle), n))
	case cellParticleFading:
		return fadingStyle.Render(strings.Repeat(string(cellGlyphs.fading), n))
	}
	return strings.Repeat(" ", n)
}

// fit truncates s to width terminal cells.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

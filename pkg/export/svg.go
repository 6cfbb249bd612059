package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/monkeyWie/flutter-treeview/pkg/treeview"
)

// SVG layout constants. Monospace metrics keep the math simple; the
// output is a debugging/sharing artifact, not a pixel-perfect render.
const (
	svgRowHeight  = 24
	svgIndent     = 22
	svgCheckbox   = 14
	svgCharWidth  = 8
	svgPadding    = 20
	svgHeaderSize = 40
	svgMinWidth   = 320
)

// Snapshot colors.
const (
	svgBackdrop  = "#282A36"
	svgText      = "#F8F8F2"
	svgSubtle    = "#6272A4"
	svgSelected  = "#50FA7B"
	svgPartial   = "#FFB86C"
	svgUnchecked = "#44475A"
)

// SaveTreeSVG writes an SVG snapshot of the visible tree to path.
func SaveTreeSVG[V any](path string, tr *treeview.Tree[V], title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg file: %w", err)
	}
	defer f.Close()
	return WriteTreeSVG(f, tr, title)
}

// WriteTreeSVG renders the visible rows of the tree (the same rows the
// widget shows: hidden nodes skipped, collapsed subtrees folded) as an
// SVG document with one checkbox+label row per node.
func WriteTreeSVG[V any](w io.Writer, tr *treeview.Tree[V], title string) error {
	rows := visibleRows(tr)

	width := svgMinWidth
	for _, n := range rows {
		rowW := svgPadding*2 + n.Depth()*svgIndent + svgCheckbox + 8 + len(n.Label)*svgCharWidth
		if rowW > width {
			width = rowW
		}
	}
	height := svgHeaderSize + len(rows)*svgRowHeight + svgPadding

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", svgBackdrop))

	if title == "" {
		title = "tree selection"
	}
	canvas.Text(svgPadding, 26, title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", svgText))

	y := svgHeaderSize
	for _, n := range rows {
		x := svgPadding + n.Depth()*svgIndent

		boxStyle := fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", svgUnchecked)
		switch {
		case n.Selected:
			boxStyle = fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", svgSelected, svgSelected)
		case n.PartiallySelected:
			boxStyle = fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", svgPartial, svgPartial)
		}
		canvas.Roundrect(x, y+(svgRowHeight-svgCheckbox)/2, svgCheckbox, svgCheckbox, 3, 3, boxStyle)

		labelColor := svgText
		if !n.Selected && !n.PartiallySelected {
			labelColor = svgSubtle
		}
		marker := ""
		if !n.IsLeaf() && !n.Expanded {
			marker = " …"
		}
		canvas.Text(x+svgCheckbox+8, y+svgRowHeight/2+5, n.Label+marker,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", labelColor))

		y += svgRowHeight
	}

	canvas.End()
	return nil
}

package components

import (
	"github.com/PizzaHomicide/rotv/internal/ui/tui/styles"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/util"
)

// ChannelCard renders one grid cell.  The label is cut to labelWidth display cells and padded so every card in a
// row has the same size.
func ChannelCard(name string, labelWidth int, selected bool) string {
	label := util.PadLabel(name, labelWidth)
	if selected {
		return styles.SelectedCard.Render(label)
	}
	return styles.Card.Render(label)
}

// CardWidth is the rendered width of a card, label plus border and padding
func CardWidth(labelWidth int) int {
	return labelWidth + styles.Card.GetHorizontalFrameSize()
}

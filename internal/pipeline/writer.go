package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/isotools/pcfgen/internal/models"
)

// blockIndent is the attribute-line indent of the exchange format.
const blockIndent = "    "

// WriteBlocks renders a conversion result as exchange-format text: one block
// per component, the type on its own line followed by the indented attribute
// lines.
func WriteBlocks(w io.Writer, res *models.ConversionResult) error {
	bw := bufio.NewWriter(w)
	for _, block := range res.Blocks {
		if _, err := fmt.Fprintln(bw, string(block.Type)); err != nil {
			return err
		}
		for _, line := range block.Lines {
			if _, err := fmt.Fprintln(bw, line.Render(blockIndent)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

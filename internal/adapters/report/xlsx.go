package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

const sheetName = "comparison"

var reportColumns = []string{
	"question",
	"top_k",
	"vector_answer",
	"vector_error",
	"vector_context_size",
	"vector_grounding",
	"vector_duration_ms",
	"vector_cypher_answer",
	"vector_cypher_error",
	"vector_cypher_context_size",
	"vector_cypher_grounding",
	"vector_cypher_duration_ms",
}

// WriteXLSX writes one row per comparison under a header row.
func WriteXLSX(w io.Writer, setName string, results []domain.Comparison) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if setName != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: setName}); err != nil {
			return fmt.Errorf("set document title: %w", err)
		}
	}

	for col, name := range reportColumns {
		if err := setCell(f, col+1, 1, name); err != nil {
			return err
		}
	}
	for idx, result := range results {
		row := idx + 2
		values := []any{
			result.Question,
			result.TopK,
			result.Vector.Answer,
			result.Vector.Error,
			result.Vector.ContextSize,
			result.Vector.Grounding,
			durationMillis(result.Vector),
			result.VectorCypher.Answer,
			result.VectorCypher.Error,
			result.VectorCypher.ContextSize,
			result.VectorCypher.Grounding,
			durationMillis(result.VectorCypher),
		}
		for col, value := range values {
			if err := setCell(f, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}

func durationMillis(a domain.StrategyAnswer) float64 {
	return float64(a.Duration.Microseconds()) / 1000.0
}

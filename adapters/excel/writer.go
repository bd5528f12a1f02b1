package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gosubgroup/domain/run"
)

const (
	subgroupSheet = "Subgroups"
	manifestSheet = "Manifest"
)

// ResultWriter exports a run to a workbook with a ranked subgroup sheet and
// a manifest sheet.
type ResultWriter struct{}

func NewResultWriter() *ResultWriter { return &ResultWriter{} }

// Write implements ports.ResultWriter
func (w *ResultWriter) Write(path string, r *run.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", subgroupSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := []interface{}{"rank", "description", "quality", "size", "positives", "p_value", "permutation_p"}
	if err := f.SetSheetRow(subgroupSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range r.Subgroups {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{s.Rank, s.Description, s.Quality, s.Size, s.Positives, s.PValue, s.PermutationP}
		if err := f.SetSheetRow(subgroupSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write subgroup %d: %w", s.Rank, err)
		}
	}

	if _, err := f.NewSheet(manifestSheet); err != nil {
		return fmt.Errorf("failed to add manifest sheet: %w", err)
	}
	m := r.Manifest
	entries := [][]interface{}{
		{"run_id", m.RunID.String()},
		{"dataset", m.DatasetName},
		{"dataset_hash", m.DatasetHash.String()},
		{"rows", m.Rows},
		{"target", m.Target},
		{"strategy", m.Strategy},
		{"options_hash", m.OptionsHash.String()},
		{"results_hash", m.ResultsHash.String()},
		{"code_version", m.CodeVersion},
		{"created_at", m.CreatedAt.String()},
		{"status", string(r.Status)},
	}
	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(manifestSheet, cell, &entry); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

package services

import (
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/planner"
)

// Summarize folds a plan and the engine's result into the per-item report.
// Results are consumed in plan order: a file item maps to one result, a
// directory item to as many results as it had tasks. Items whose only task
// was dropped as a duplicate are omitted.
func Summarize(batchID string, plan *planner.Plan, result *models.BatchResult) *models.OperationSummary {
	if result == nil {
		result = models.NewBatchResult(plan.DestinationRoot, nil)
	}
	summary := &models.OperationSummary{
		BatchID:   batchID,
		Direction: plan.Direction,
		Items:     []models.ItemSummary{},
		Totals:    result,
	}

	cursor := 0
	for _, g := range plan.Groups {
		item := models.ItemSummary{Name: g.Item.Name, IsDirectory: g.Item.IsDirectory}

		if g.Err != nil {
			item.Error = g.Err.Error()
			summary.EnumerationFailures++
			summary.Items = append(summary.Items, item)
			continue
		}

		n := len(g.Tasks)
		if cursor+n > len(result.Results) {
			n = len(result.Results) - cursor
		}
		slice := result.Results[cursor : cursor+n]
		cursor += n

		if !g.Item.IsDirectory {
			if len(slice) == 0 {
				continue
			}
			r := slice[0]
			item.Success = r.Success
			item.Message = r.Message
			item.Error = r.Error
			summary.Items = append(summary.Items, item)
			continue
		}

		sub := models.NewBatchResult("", append([]models.TransferResult(nil), slice...))
		item.Batch = sub
		item.Success = sub.FailedCount == 0
		if !item.Success {
			item.Error = "some files failed"
		}
		summary.Items = append(summary.Items, item)
	}

	summary.Outcome = models.ClassifyOutcome(result.SuccessCount, result.FailedCount+summary.EnumerationFailures)
	return summary
}

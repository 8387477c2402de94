package models

import "fmt"

// Direction of a transfer relative to the host
type Direction string

const (
	DirectionPull Direction = "pull" // device -> host
	DirectionPush Direction = "push" // host -> device
)

// Status returns the progress status word for the direction ("pulling" or "pushing").
func (d Direction) Status() string {
	switch d {
	case DirectionPull:
		return "pulling"
	case DirectionPush:
		return "pushing"
	default:
		return string(d)
	}
}

// TransferTask is one concrete file-level operation
type TransferTask struct {
	SourcePath      string    `json:"sourcePath"`
	DestinationPath string    `json:"destinationPath"`
	Direction       Direction `json:"direction"`
	Name            string    `json:"name"`           // display name
	Size            int64     `json:"size,omitempty"` // 0 when unknown
}

// TransferResult is the outcome of one TransferTask
type TransferResult struct {
	FileName  string `json:"file"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	LocalPath string `json:"localPath,omitempty"`
}

// BatchResult aggregates the results of one batch.
// SuccessCount + FailedCount == TotalFiles == len(Results).
type BatchResult struct {
	Success         bool             `json:"success"` // no task failed
	TotalFiles      int              `json:"totalFiles"`
	SuccessCount    int              `json:"successCount"`
	FailedCount     int              `json:"failedCount"`
	Results         []TransferResult `json:"results"`
	DestinationRoot string           `json:"destinationRoot,omitempty"`
}

// NewBatchResult builds a BatchResult from ordered per-task results.
func NewBatchResult(destRoot string, results []TransferResult) *BatchResult {
	br := &BatchResult{
		TotalFiles:      len(results),
		Results:         results,
		DestinationRoot: destRoot,
	}
	if br.Results == nil {
		br.Results = []TransferResult{}
	}
	for _, r := range results {
		if r.Success {
			br.SuccessCount++
		} else {
			br.FailedCount++
		}
	}
	br.Success = br.FailedCount == 0
	return br
}

// Outcome classifies a finished operation
type Outcome string

const (
	OutcomeFull    Outcome = "full"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// ClassifyOutcome derives the outcome from success and failure counts.
// An operation with nothing to do counts as a full success.
func ClassifyOutcome(succeeded, failed int) Outcome {
	switch {
	case failed == 0:
		return OutcomeFull
	case succeeded == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// ItemSummary reports one selected item of an operation.
// Files report their own result, directories report file counts.
type ItemSummary struct {
	Name        string       `json:"name"`
	IsDirectory bool         `json:"isDirectory"`
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
	Batch       *BatchResult `json:"batch,omitempty"` // directory items only
}

// Label renders the item the way the results list shows it.
func (s ItemSummary) Label() string {
	if s.IsDirectory && s.Batch != nil {
		return fmt.Sprintf("%s (%d/%d files)", s.Name, s.Batch.SuccessCount, s.Batch.TotalFiles)
	}
	return s.Name
}

// OperationSummary is the user-visible report of one pull or push request
type OperationSummary struct {
	BatchID   string        `json:"batchId"`
	Direction Direction     `json:"direction"`
	Items     []ItemSummary `json:"items"`
	Totals    *BatchResult  `json:"totals"`
	Outcome   Outcome       `json:"outcome"`
	// EnumerationFailures counts directories whose contents could not be listed
	EnumerationFailures int `json:"enumerationFailures,omitempty"`
}

// Headline is a one-line description of the outcome with counts.
func (s *OperationSummary) Headline() string {
	verb := "Pulled"
	if s.Direction == DirectionPush {
		verb = "Pushed"
	}
	switch s.Outcome {
	case OutcomeFull:
		return fmt.Sprintf("%s %d of %d files", verb, s.Totals.SuccessCount, s.Totals.TotalFiles)
	case OutcomePartial:
		return fmt.Sprintf("%s %d of %d files, %d failed", verb, s.Totals.SuccessCount, s.Totals.TotalFiles, s.Totals.FailedCount+s.EnumerationFailures)
	default:
		return fmt.Sprintf("Transfer failed: %d of %d files failed", s.Totals.FailedCount+s.EnumerationFailures, s.Totals.TotalFiles+s.EnumerationFailures)
	}
}

package recorder

import "StockArchive/internal/model"

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(report *model.RunReport) error
	Close() error
}

package pipeline

import "time"

// Recorder receives pipeline measurements. *metrics.Collector implements it.
type Recorder interface {
	RecordWritten()
	RecordExamined(verdict string)
	RecordGeneration(d time.Duration, err error)
	RecordRetrieval(d time.Duration, err error)
	RecordJob(status string)
	SetQueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordWritten() {}
func (nopRecorder) RecordExamined(string) {}
func (nopRecorder) RecordGeneration(time.Duration, error) {}
func (nopRecorder) RecordRetrieval(time.Duration, error) {}
func (nopRecorder) RecordJob(string) {}
func (nopRecorder) SetQueueDepth(int) {}

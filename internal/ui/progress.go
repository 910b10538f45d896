package ui

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

var progressWriter progress.Writer

// StartProgressWriter begins rendering install progress on stderr.
func StartProgressWriter() {
	pw := progress.NewWriter()

	pw.SetAutoStop(false)
	pw.SetTrackerLength(25)
	pw.SetMessageLength(32)
	pw.SetStyle(progress.StyleDefault)
	pw.SetOutputWriter(os.Stderr)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = true

	progressWriter = pw
	go progressWriter.Render()
}

// StopProgressWriter stops rendering, flushing the final frame.
func StopProgressWriter() {
	if progressWriter != nil {
		progressWriter.Stop()
		progressWriter = nil
	}
}

// SetPinnedMessage pins a status line above the progress trackers.
func SetPinnedMessage(message string) {
	if progressWriter != nil {
		progressWriter.SetPinnedMessages(message)
	}
}

// ClearPinnedMessage removes the pinned status line.
func ClearPinnedMessage() {
	if progressWriter != nil {
		progressWriter.SetPinnedMessages()
	}
}

// TrackInstallProgress registers a tracker covering the given number of
// components. The returned function advances it by one component.
func TrackInstallProgress(total int) func() {
	tracker := progress.Tracker{
		Message: "Installing components",
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}

	if progressWriter != nil {
		progressWriter.AppendTracker(&tracker)
	}

	return func() {
		tracker.Increment(1)
		if tracker.Value() >= tracker.Total {
			tracker.MarkAsDone()
		}
	}
}

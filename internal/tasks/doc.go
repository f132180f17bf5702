// package tasks implements long-running transcription jobs.
//
// [BatchEngine] transcribes a list of files one after another through a [session.Dispatcher], so the batch obeys the
// same single-request rule as interactive use. Submissions are paced with a token bucket
// ([golang.org/x/time/rate]) and progress is reported on a channel that is never allowed to block the job.
package tasks

package metrics

import "time"

// RecordGenerationRun records a finished generation run.
// Status should be "success" or "failed".
func RecordGenerationRun(status string, duration time.Duration) {
	GenerationRunsTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

// RecordArticleCreated records one article published by the pipeline.
func RecordArticleCreated() {
	ArticlesCreatedTotal.Inc()
}

// RecordFeedQueryError records a failed query against one feed endpoint.
func RecordFeedQueryError(feedName string) {
	FeedQueryErrorsTotal.WithLabelValues(feedName).Inc()
}

// RecordCandidatesDiscovered records the candidate count of a discovery pass.
func RecordCandidatesDiscovered(count int) {
	CandidatesDiscovered.Observe(float64(count))
}

// RecordScrape records the outcome of one page scrape attempt.
func RecordScrape(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	ScrapeAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordRewriteParse records which parser strategy accepted the backend
// response.
func RecordRewriteParse(strategy string) {
	RewriteParseRecoveriesTotal.WithLabelValues(strategy).Inc()
}

// RecordRewriteDuration records the duration of a rewrite backend call.
func RecordRewriteDuration(duration time.Duration) {
	RewriteDuration.Observe(duration.Seconds())
}

// RecordSchedulerTrigger records a scheduler trigger firing.
// Outcome is one of "ok", "disabled", "error" or "panic".
func RecordSchedulerTrigger(outcome string) {
	SchedulerTriggersTotal.WithLabelValues(outcome).Inc()
}

package response

import (
	"time"

	"school-notifier/internal/usecase/checks"

	"github.com/jinzhu/copier"
)

type CheckResultResponse struct {
	Check      string    `json:"check"`
	RunID      string    `json:"run_id"`
	Candidates int       `json:"candidates"`
	Notified   int       `json:"notified"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
}

type CheckReportResponse struct {
	OK      bool                   `json:"ok"`
	Results []*CheckResultResponse `json:"results"`
}

func FromCheckResult(res checks.Result) (*CheckResultResponse, error) {
	var out CheckResultResponse
	if err := copier.Copy(&out, &res); err != nil {
		return nil, err
	}
	out.Check = res.Check.String()
	out.DurationMS = res.Duration().Milliseconds()
	out.OK = res.OK()
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return &out, nil
}

func FromCheckReport(report checks.Report) (*CheckReportResponse, error) {
	out := &CheckReportResponse{
		OK:      report.OK(),
		Results: make([]*CheckResultResponse, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		r, err := FromCheckResult(res)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}

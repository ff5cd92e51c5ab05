package intent

import (
	"regexp"
	"strconv"
)

// Parameters extracted from a message for the downstream analysis call.
// Days is the future horizon, HistoryDays the lookback window, Period the
// reporting window for social/summary analyses. Zero means unset.
type Parameters struct {
	Days        int `json:"days,omitempty"`
	HistoryDays int `json:"historyDays,omitempty"`
	Period      int `json:"period,omitempty"`
}

var (
	nextNDaysRe   = regexp.MustCompile(`(?i)pr[óo]ximos?.*?(\d+).*?dia`)
	nextMonthRe   = regexp.MustCompile(`(?i)pr[óo]ximo.*m[êe]s`)
	nextWeekRe    = regexp.MustCompile(`(?i)pr[óo]xima.*semana`)
	nextQuarterRe = regexp.MustCompile(`(?i)pr[óo]ximo.*trimestre`)

	lastNDaysRe = regexp.MustCompile(`(?i)[úu]ltimos?.*?(\d+).*?dia`)
	lastWeekRe  = regexp.MustCompile(`(?i)[úu]ltim[ao].*semana`)
	lastMonthRe = regexp.MustCompile(`(?i)[úu]ltimo.*m[êe]s`)
)

// ExtractParameters pulls time-window parameters out of the raw message in a
// second, independent pass, then fills intent-specific defaults. It tolerates
// any UTF-8 text and never panics.
func ExtractParameters(message string, detected Intent) Parameters {
	var params Parameters

	// Future horizon.
	switch {
	case nextNDaysRe.MatchString(message):
		if m := nextNDaysRe.FindStringSubmatch(message); len(m) == 2 {
			params.Days, _ = strconv.Atoi(m[1])
		}
	case nextQuarterRe.MatchString(message):
		// Before the month check: "trimestre" contains the unaccented "mes".
		params.Days = 90
	case nextMonthRe.MatchString(message):
		params.Days = 30
	case nextWeekRe.MatchString(message):
		params.Days = 7
	}

	// Historical lookback.
	switch {
	case lastNDaysRe.MatchString(message):
		if m := lastNDaysRe.FindStringSubmatch(message); len(m) == 2 {
			params.HistoryDays, _ = strconv.Atoi(m[1])
		}
	case lastWeekRe.MatchString(message):
		params.HistoryDays = 7
	case lastMonthRe.MatchString(message):
		params.HistoryDays = 30
	}

	// Intent-specific defaults when no explicit phrase was found.
	if params.Days == 0 {
		switch detected {
		case SalesForecast, AnomalyDetection:
			params.Days = 30
		case InstagramAnalysis, TikTokAnalysis, DashboardSummary:
			params.Period = 7
		}
	}

	return params
}

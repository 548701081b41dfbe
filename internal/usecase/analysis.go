package usecase

import (
	"fmt"
	"strings"

	"screener-engine/internal/domain"
)

// statusFor buckets a score into a display tier.
func statusFor(score float64) string {
	switch {
	case score >= 80:
		return "STRONG"
	case score >= 65:
		return "GOOD"
	case score >= 50:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

// summarize writes a short human-readable analysis of a record.
func summarize(rec domain.AnalysisRecord) string {
	var b strings.Builder

	switch rec.Status {
	case "STRONG":
		fmt.Fprintf(&b, "Strong opportunity (score %.0f).", rec.Score)
	case "GOOD":
		fmt.Fprintf(&b, "Good opportunity (score %.0f).", rec.Score)
	case "MODERATE":
		fmt.Fprintf(&b, "Moderate opportunity (score %.0f), wait for confirmation.", rec.Score)
	default:
		fmt.Fprintf(&b, "Weak setup (score %.0f).", rec.Score)
	}

	if len(rec.Signals) > 0 {
		details := make([]string, len(rec.Signals))
		for i, s := range rec.Signals {
			details[i] = s.Detail
		}
		fmt.Fprintf(&b, " Signals: %s.", strings.Join(details, "; "))
	}

	if adv := rec.Indicators.Advanced; adv != nil {
		if adv.ADX >= 25 {
			fmt.Fprintf(&b, " ADX %.0f confirms a trending market.", adv.ADX)
		} else {
			fmt.Fprintf(&b, " ADX %.0f points to a ranging market.", adv.ADX)
		}
	}

	if rec.Plan != nil {
		fmt.Fprintf(&b, " Entry %.6g, stop %.6g, R/R %.2f (%s).",
			rec.Plan.EntryPoint, rec.Plan.StopLoss, rec.Plan.RiskRewardRatio, rec.Plan.Strategy)
	}
	if rec.Simulated {
		b.WriteString(" Indicators are simulated.")
	}
	return b.String()
}

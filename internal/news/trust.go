package news

// VerifyThreshold is the minimum verification count for an item to be
// considered verified.
const VerifyThreshold = 10

// FlagCeiling is the flag count at which an item can no longer be
// considered verified, regardless of verifications.
const FlagCeiling = 3

// TrustMetrics are the derived display values for an item's
// crowdsourced trustworthiness. They are recomputed from the raw counts
// on every read; nothing here is ever stored, so the metrics cannot
// drift from the authoritative sets.
type TrustMetrics struct {
	TotalResponses int
	VerifyPercent  float64
	FlagPercent    float64
	IsVerified     bool
}

// ComputeTrust derives TrustMetrics from raw verification and flag
// counts. With zero responses the split defaults to a neutral 50/50.
// FlagPercent is computed as the complement of VerifyPercent so the two
// always sum to exactly 100.
func ComputeTrust(verifications, flags int) TrustMetrics {
	m := TrustMetrics{
		TotalResponses: verifications + flags,
		VerifyPercent:  50,
		FlagPercent:    50,
	}
	if m.TotalResponses > 0 {
		m.VerifyPercent = 100 * float64(verifications) / float64(m.TotalResponses)
		m.FlagPercent = 100 - m.VerifyPercent
	}
	m.IsVerified = verifications >= VerifyThreshold && flags < FlagCeiling
	return m
}

// Trust derives the metrics for an item.
func (n *NewsItem) Trust() TrustMetrics {
	return ComputeTrust(len(n.Verifications), len(n.Flags))
}

package risk

// Evaluate grades an order against every enabled limit. It is pure: no
// clocks, no stores, no mutation of its inputs. Identical inputs always
// grade identically, so callers may re-run it for preview or audit.
//
// Exposure projections assume BUY adds the order's notional and SELL
// removes it (floored at zero). Daily loss limits grade on realized loss
// as it stands; the order cannot change what is already lost.
func Evaluate(in OrderInput, exp Exposure, cfg Config) Assessment {
	warn := cfg.WarningThreshold
	if warn <= 0 || warn >= 1 {
		warn = 0.8
	}

	// Notional: the order's own price wins, then the snapshot mark.
	// Negative means the order cannot be priced at all.
	notional := -1.0
	switch {
	case in.Price > 0:
		notional = in.Price * in.Qty
	case exp.MarkPrice > 0:
		notional = exp.MarkPrice * in.Qty
	}
	buying := in.Side == "BUY"

	var checks []LimitCheck

	// 1. Order notional cap. An unpriceable order cannot be proven under
	// the cap, so it grades BREACH while the limit is enabled.
	if cfg.MaxOrderNotional > 0 {
		if notional < 0 {
			checks = append(checks, unpriceable(LimitOrderNotional, cfg.MaxOrderNotional))
		} else {
			checks = append(checks, grade(LimitOrderNotional, notional, cfg.MaxOrderNotional, warn))
		}
	}

	// 2. Per-symbol exposure, projected under the order.
	if cfg.MaxSymbolExposure > 0 {
		checks = append(checks, exposureCheck(LimitSymbolExposure, exp.SymbolExposure, notional, buying, cfg.MaxSymbolExposure, warn))
	}

	// 3. Total exposure, projected under the order.
	if cfg.MaxTotalExposure > 0 {
		checks = append(checks, exposureCheck(LimitTotalExposure, exp.TotalExposure, notional, buying, cfg.MaxTotalExposure, warn))
	}

	// 4. Open position count. Only a BUY on a flat symbol opens one.
	if cfg.MaxOpenPositions > 0 {
		projected := exp.OpenPositions
		if buying && !exp.HasPosition {
			projected++
		}
		checks = append(checks, grade(LimitOpenPositions, float64(projected), float64(cfg.MaxOpenPositions), warn))
	}

	// 5. Daily loss, absolute.
	if cfg.MaxDailyLoss > 0 {
		checks = append(checks, grade(LimitDailyLoss, exp.DailyRealizedLoss, cfg.MaxDailyLoss, warn))
	}

	// 6. Daily loss as a fraction of day-open equity. A loss with no known
	// equity base cannot be bounded, so it grades BREACH.
	if cfg.MaxDailyLossPct > 0 {
		if exp.DailyRealizedLoss <= 0 {
			checks = append(checks, grade(LimitDailyLossPct, 0, cfg.MaxDailyLossPct, warn))
		} else if exp.EquityAtOpen <= 0 {
			checks = append(checks, unpriceable(LimitDailyLossPct, cfg.MaxDailyLossPct))
		} else {
			lossFrac := exp.DailyRealizedLoss / exp.EquityAtOpen
			checks = append(checks, grade(LimitDailyLossPct, lossFrac, cfg.MaxDailyLossPct, warn))
		}
	}

	out := Assessment{Severity: SeverityOK, Checks: checks}
	for _, c := range checks {
		out.Severity = out.Severity.Max(c.Severity)
	}
	return out
}

// exposureCheck projects an exposure value under the order and grades it.
// A BUY of unknown notional fails closed; a SELL of unknown notional grades
// on the current value, which it can only reduce.
func exposureCheck(name string, current, notional float64, buying bool, limit, warn float64) LimitCheck {
	switch {
	case notional < 0 && buying:
		return unpriceable(name, limit)
	case notional < 0:
		return grade(name, current, limit, warn)
	case buying:
		return grade(name, current+notional, limit, warn)
	default:
		projected := current - notional
		if projected < 0 {
			projected = 0
		}
		return grade(name, projected, limit, warn)
	}
}

// grade computes the ratio for one limit and places it on the severity
// ladder: OK below the warning threshold, WARNING from there to the limit,
// BREACH at or past it.
func grade(name string, current, limit, warn float64) LimitCheck {
	ratio := current / limit
	sev := SeverityOK
	switch {
	case ratio >= 1:
		sev = SeverityBreach
	case ratio >= warn:
		sev = SeverityWarning
	}
	return LimitCheck{Name: name, Current: current, Limit: limit, Ratio: ratio, Severity: sev}
}

// unpriceable is the fail-closed check for limits that cannot be computed.
func unpriceable(name string, limit float64) LimitCheck {
	return LimitCheck{Name: name, Current: 0, Limit: limit, Ratio: 1, Severity: SeverityBreach}
}

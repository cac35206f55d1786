// Package survival computes the discrimination metrics used to score each
// fitted model: a horizon-agnostic pairwise concordance and a
// horizon-specific censoring-weighted concordance.
package survival

import "sort"

// NoDiscrimination is the sentinel returned when a split cannot support a
// concordance estimate (no events, no comparable pairs, constant scores).
// Small degenerate test splits are expected under MC-CV, not defects.
const NoDiscrimination = 0.5

// HarrellC is the pairwise concordance: among comparable pairs, the
// fraction whose predicted risk ordering agrees with the observed outcome
// ordering. A pair is comparable when the earlier time is an event. Tied
// risks count one half.
func HarrellC(times []float64, status []int, risk []float64) float64 {
	n := len(times)
	var concordant, comparable float64

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			shorter, longer := i, j
			if times[j] < times[i] {
				shorter, longer = j, i
			}
			if times[shorter] == times[longer] || status[shorter] != 1 {
				continue
			}

			comparable++
			switch {
			case risk[shorter] > risk[longer]:
				concordant++
			case risk[shorter] == risk[longer]:
				concordant += 0.5
			}
		}
	}

	if comparable == 0 {
		return NoDiscrimination
	}
	return concordant / comparable
}

// HorizonC is the horizon-weighted concordance: pairs are restricted to
// those whose earlier time is an observed event before the horizon, and
// each pair is weighted by the inverse squared censoring survival at the
// event time. This answers the horizon-specific discrimination question
// that HarrellC, which uses the full follow-up, does not.
func HorizonC(times []float64, status []int, risk []float64, horizon float64) float64 {
	n := len(times)
	km := newCensoringKM(times, status)

	var concordant, weight float64
	for i := 0; i < n; i++ {
		if status[i] != 1 || times[i] >= horizon {
			continue
		}
		g := km.at(times[i])
		if g <= 0 {
			continue
		}
		w := 1 / (g * g)

		for j := 0; j < n; j++ {
			if j == i || times[j] <= times[i] {
				continue
			}

			weight += w
			switch {
			case risk[i] > risk[j]:
				concordant += w
			case risk[i] == risk[j]:
				concordant += w / 2
			}
		}
	}

	if weight == 0 {
		return NoDiscrimination
	}
	return concordant / weight
}

// censoringKM is the Kaplan-Meier estimator of the censoring distribution
// (censorings are the "events" here), evaluated left-continuously.
type censoringKM struct {
	times []float64
	surv  []float64
}

func newCensoringKM(times []float64, status []int) censoringKM {
	n := len(times)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return times[order[a]] < times[order[b]]
	})

	km := censoringKM{}
	atRisk := float64(n)
	surv := 1.0

	i := 0
	for i < n {
		t := times[order[i]]
		var censored, total float64
		for i < n && times[order[i]] == t {
			if status[order[i]] == 0 {
				censored++
			}
			total++
			i++
		}
		if censored > 0 && atRisk > 0 {
			surv *= 1 - censored/atRisk
			km.times = append(km.times, t)
			km.surv = append(km.surv, surv)
		}
		atRisk -= total
	}

	return km
}

// at returns the censoring survival just before t.
func (km censoringKM) at(t float64) float64 {
	surv := 1.0
	for i, kt := range km.times {
		if kt >= t {
			break
		}
		surv = km.surv[i]
	}
	return surv
}

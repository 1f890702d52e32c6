package race

import (
	"sort"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/property"
)

// Candidate pairs one eligible, ranked protocol adapter factory with one
// resolved remote endpoint — one row of the flat candidate list produced
// by Gather.
type Candidate struct {
	Protocol adapter.Name
	Endpoint endpoint.Resolved
	rank     int
}

// Gather evaluates every registered protocol adapter's capability
// descriptor against sel's REQUIRE/PROHIBIT selection properties,
// ranks the eligible ones by satisfied PREFER minus satisfied AVOID
// (ties broken by registration order — UDP, TCP, QUIC in this module),
// and cross-products the ranked adapters with the resolved remote
// endpoints to produce a flat, priority-ordered candidate list.
func Gather(sel *property.SelectionProperties, endpoints []endpoint.Resolved) ([]Candidate, error) {
	if len(endpoints) == 0 {
		return nil, errors.New(errors.NoCandidate, nil)
	}

	names := adapter.Registered()
	type ranked struct {
		name  adapter.Name
		score int
		order int
	}
	var eligible []ranked

	for i, name := range names {
		proto := adapter.New(name)
		if proto == nil {
			continue
		}
		caps := proto.Capabilities()

		if !eligibleCaps(caps, sel) {
			continue
		}
		eligible = append(eligible, ranked{name: name, score: scoreCaps(caps, sel), order: i})
	}

	if len(eligible) == 0 {
		return nil, errors.New(errors.NoCandidate, nil)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].score != eligible[j].score {
			return eligible[i].score > eligible[j].score
		}
		return eligible[i].order < eligible[j].order
	})

	var out []Candidate
	for _, r := range eligible {
		for _, ep := range endpoints {
			out = append(out, Candidate{Protocol: r.name, Endpoint: ep, rank: r.score})
		}
	}

	return out, nil
}

func eligibleCaps(caps adapter.Capabilities, sel *property.SelectionProperties) bool {
	for _, name := range property.Names() {
		pref := sel.Get(name)
		if pref == property.Require || pref == property.Prohibit {
			if !caps.Satisfies(name, pref) {
				return false
			}
		}
	}
	return true
}

func scoreCaps(caps adapter.Capabilities, sel *property.SelectionProperties) int {
	total := 0
	for _, name := range property.Names() {
		total += caps.Score(name, sel.Get(name))
	}
	return total
}

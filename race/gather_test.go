package race_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	_ "github.com/ikhovind/gotaps/adapter/quic"
	_ "github.com/ikhovind/gotaps/adapter/tcp"
	_ "github.com/ikhovind/gotaps/adapter/udp"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/race"
)

var sampleEndpoints = []endpoint.Resolved{
	{IP: net.ParseIP("127.0.0.1"), Port: 4433},
}

var _ = Describe("Gather", func() {
	It("excludes UDP under default selection properties (RELIABILITY=REQUIRE)", func() {
		sel := property.BuildSelectionProperties()
		candidates, err := race.Gather(sel, sampleEndpoints)
		Expect(err).NotTo(HaveOccurred())

		for _, c := range candidates {
			Expect(c.Protocol).NotTo(Equal(adapter.UDP))
		}
	})

	It("ranks QUIC ahead of TCP when MULTISTREAMING is preferred and both are otherwise eligible", func() {
		sel := property.BuildSelectionProperties()
		candidates, err := race.Gather(sel, sampleEndpoints)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(candidates)).To(BeNumerically(">=", 2))

		var order []adapter.Name
		for _, c := range candidates {
			order = append(order, c.Protocol)
		}
		Expect(order).To(ContainElement(adapter.QUIC))
		Expect(order).To(ContainElement(adapter.TCP))

		quicIdx, tcpIdx := -1, -1
		for i, n := range order {
			if n == adapter.QUIC && quicIdx == -1 {
				quicIdx = i
			}
			if n == adapter.TCP && tcpIdx == -1 {
				tcpIdx = i
			}
		}
		Expect(quicIdx).To(BeNumerically("<", tcpIdx))
	})

	It("includes UDP when RELIABILITY is relaxed to NO_PREFERENCE", func() {
		sel := property.BuildSelectionProperties()
		sel.Set(property.Reliability, property.NoPreference)
		sel.Set(property.PreserveOrder, property.NoPreference)
		sel.Set(property.CongestionControl, property.NoPreference)

		candidates, err := race.Gather(sel, sampleEndpoints)
		Expect(err).NotTo(HaveOccurred())

		found := false
		for _, c := range candidates {
			if c.Protocol == adapter.UDP {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("cross-products every eligible adapter with every resolved endpoint", func() {
		sel := property.BuildSelectionProperties()
		sel.Set(property.Reliability, property.NoPreference)
		sel.Set(property.PreserveOrder, property.NoPreference)
		sel.Set(property.CongestionControl, property.NoPreference)

		endpoints := []endpoint.Resolved{
			{IP: net.ParseIP("127.0.0.1"), Port: 1},
			{IP: net.ParseIP("::1"), Port: 2},
		}
		candidates, err := race.Gather(sel, endpoints)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(candidates) % len(endpoints)).To(Equal(0))
	})

	It("returns NoCandidate when no endpoints were resolved", func() {
		sel := property.BuildSelectionProperties()
		_, err := race.Gather(sel, nil)
		Expect(err).To(HaveOccurred())
	})

	It("returns NoCandidate when no adapter can satisfy a contradictory REQUIRE/PROHIBIT pair", func() {
		sel := property.BuildSelectionProperties()
		// Multistreaming is only satisfied by QUIC, which is always
		// message-oriented, so requiring Multistreaming while
		// prohibiting message boundaries admits no adapter.
		sel.Set(property.Multistreaming, property.Require)
		sel.Set(property.PreserveMsgBoundaries, property.Prohibit)

		_, err := race.Gather(sel, sampleEndpoints)
		Expect(err).To(HaveOccurred())
	})
})

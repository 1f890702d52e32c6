package adapter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/property"
)

var tcpLike = adapter.Capabilities{Reliable: true, PreservesOrder: true, ConfigurableCongCtl: true}
var udpLike = adapter.Capabilities{MessageOriented: true}

var _ = Describe("Capabilities.Satisfies", func() {
	It("is eligible when REQUIRE is met", func() {
		Expect(tcpLike.Satisfies(property.Reliability, property.Require)).To(BeTrue())
	})

	It("is ineligible when REQUIRE is missed", func() {
		Expect(udpLike.Satisfies(property.Reliability, property.Require)).To(BeFalse())
	})

	It("is ineligible when PROHIBIT is violated", func() {
		Expect(tcpLike.Satisfies(property.Reliability, property.Prohibit)).To(BeFalse())
	})

	It("never disqualifies on AVOID/PREFER/NO_PREFERENCE", func() {
		Expect(udpLike.Satisfies(property.Reliability, property.Avoid)).To(BeTrue())
		Expect(udpLike.Satisfies(property.Reliability, property.Prefer)).To(BeTrue())
		Expect(udpLike.Satisfies(property.Reliability, property.NoPreference)).To(BeTrue())
	})
})

var _ = Describe("Capabilities.Score", func() {
	It("scores +1 for a satisfied PREFER", func() {
		Expect(tcpLike.Score(property.Reliability, property.Prefer)).To(Equal(1))
	})

	It("scores 0 for an unsatisfied PREFER", func() {
		Expect(udpLike.Score(property.Reliability, property.Prefer)).To(Equal(0))
	})

	It("scores +1 for a satisfied AVOID (capability absent)", func() {
		Expect(udpLike.Score(property.Reliability, property.Avoid)).To(Equal(1))
	})

	It("scores -1 for a violated AVOID (capability present)", func() {
		Expect(tcpLike.Score(property.Reliability, property.Avoid)).To(Equal(-1))
	})
})

package errors_test

import (
	liberr "github.com/ikhovind/gotaps/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("errors", func() {
	Describe("New", func() {
		It("tags the error with its code", func() {
			e := liberr.New(liberr.NoCandidate, nil)
			Expect(e.IsCode(liberr.NoCandidate)).To(BeTrue())
			Expect(e.IsCode(liberr.DNSError)).To(BeFalse())
		})

		It("falls back to the code's default message when no cause is given", func() {
			e := liberr.New(liberr.NoCandidate, nil)
			Expect(e.Error()).To(Equal(liberr.NoCandidate.Message()))
		})

		It("preserves a wrapped cause's message", func() {
			cause := liberr.Newf(liberr.DNSError, "lookup %s: no such host", "example.invalid")
			e := liberr.New(liberr.EstablishmentError, cause)
			Expect(e.Error()).To(ContainSubstring("example.invalid"))
		})

		It("records a call site", func() {
			e := liberr.New(liberr.InvalidArgument, nil)
			Expect(e.GetFile()).To(ContainSubstring("errors_test.go"))
			Expect(e.GetLine()).To(BeNumerically(">", 0))
		})
	})

	Describe("Add", func() {
		It("has no parent by default", func() {
			e := liberr.New(liberr.EstablishmentError, nil)
			Expect(e.HasParent()).To(BeFalse())
		})

		It("aggregates parent errors for last-failure-wins reporting", func() {
			root := liberr.New(liberr.EstablishmentError, nil)
			root.Add(
				liberr.Newf(liberr.Timeout, "udp candidate timed out"),
				liberr.Newf(liberr.ConnectionError, "tcp candidate refused"),
			)
			Expect(root.HasParent()).To(BeTrue())
			Expect(root.Error()).To(ContainSubstring("tcp candidate refused"))
		})

		It("ignores nil errors", func() {
			root := liberr.New(liberr.EstablishmentError, nil)
			root.Add(nil)
			Expect(root.HasParent()).To(BeFalse())
		})
	})
})

package allowance

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatDuration", func() {
	DescribeTable("rendering",
		func(d time.Duration, expected string) {
			Expect(FormatDuration(d)).To(Equal(expected))
		},
		Entry("zero", time.Duration(0), "0 minutes"),
		Entry("under a minute", 59*time.Second, "0 minutes"),
		Entry("one minute", time.Minute, "1 minute"),
		Entry("minutes", 3*time.Minute, "3 minutes"),
		Entry("one hour", time.Hour, "1 hour"),
		Entry("hours and minutes", 6*time.Hour+30*time.Minute, "6 hours 30 minutes"),
		Entry("day and hours", 26*time.Hour, "1 day 2 hours"),
		Entry("skips zero hours", 48*time.Hour+5*time.Minute, "2 days 5 minutes"),
		Entry("all parts", 2*24*time.Hour+10*time.Hour+50*time.Minute, "2 days 10 hours 50 minutes"),
		Entry("negative", -5*time.Hour, "0 minutes"),
	)
})

var _ = Describe("FormatMinutes", func() {
	DescribeTable("rendering",
		func(minutes int64, expected string) {
			Expect(FormatMinutes(minutes)).To(Equal(expected))
		},
		Entry("zero", int64(0), "0 minutes"),
		Entry("hours and minutes", int64(6*60+30), "6 hours 30 minutes"),
		Entry("beyond a time.Duration", int64(200_000)*24*60+61, "200000 days 1 hour 1 minute"),
		Entry("negative", int64(-1), "0 minutes"),
	)
})

var _ = Describe("FormatDays", func() {
	DescribeTable("rendering",
		func(days int, expected string) {
			Expect(FormatDays(days)).To(Equal(expected))
		},
		Entry("zero", 0, "0 days"),
		Entry("one", 1, "1 day"),
		Entry("several", 3, "3 days"),
		Entry("negative", -1, "0 days"),
	)
})

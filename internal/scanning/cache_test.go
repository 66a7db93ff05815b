package scanning

import (
	"errors"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingScanner is a Scanner that records how often it was called
type countingScanner struct {
	data    *ItineraryData
	scanErr error
	calls   int
	closed  bool
}

func (c *countingScanner) ScanItinerary(imageData []byte, contentType string) (*ItineraryData, error) {
	c.calls++
	if c.scanErr != nil {
		return nil, c.scanErr
	}
	return c.data, nil
}

func (c *countingScanner) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("CachedScanner", func() {
	var (
		mr      *miniredis.Miniredis
		client  *redis.Client
		next    *countingScanner
		scanner *CachedScanner
		ttl     time.Duration
		image   []byte
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(mr.Close)

		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		next = &countingScanner{
			data: &ItineraryData{Departure: "18-02-2025 14:00", Arrival: "21-02-2025 00:50"},
		}
		ttl = time.Hour
		image = []byte("itinerary bytes")
	})

	JustBeforeEach(func() {
		scanner = NewCachedScanner(next, client, ttl)
	})

	When("the same image is scanned twice", func() {
		It("calls the wrapped scanner once", func() {
			first, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			second, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())

			Expect(next.calls).To(Equal(1))
			Expect(second).To(Equal(first))
		})

		It("stores the result with the ttl", func() {
			_, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(mr.TTL(itineraryKey(image))).To(Equal(time.Hour))
		})
	})

	When("different images are scanned", func() {
		It("scans each one", func() {
			_, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			_, err = scanner.ScanItinerary([]byte("another itinerary"), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(next.calls).To(Equal(2))
		})
	})

	When("the extraction is incomplete", func() {
		BeforeEach(func() {
			next.data = &ItineraryData{Departure: "18-02-2025 14:00"}
		})

		It("does not cache it", func() {
			_, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(mr.Exists(itineraryKey(image))).To(BeFalse())
		})
	})

	When("the ttl is zero", func() {
		BeforeEach(func() {
			ttl = 0
		})

		It("does not write to redis", func() {
			_, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(mr.Keys()).To(BeEmpty())
		})
	})

	When("the wrapped scanner fails", func() {
		var setupErr error

		BeforeEach(func() {
			setupErr = errors.New("scan error")
			next.scanErr = setupErr
		})

		It("returns the error", func() {
			_, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).To(MatchError(setupErr))
		})
	})

	When("the cached value is corrupt", func() {
		BeforeEach(func() {
			Expect(mr.Set(itineraryKey(image), "not json")).To(Succeed())
		})

		It("falls through to the wrapped scanner", func() {
			data, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Arrival).To(Equal("21-02-2025 00:50"))
			Expect(next.calls).To(Equal(1))
		})
	})

	When("redis is unavailable", func() {
		BeforeEach(func() {
			client = redis.NewClient(&redis.Options{
				Addr:        "127.0.0.1:1",
				DialTimeout: 100 * time.Millisecond,
				MaxRetries:  -1,
			})
		})

		It("still scans", func() {
			data, err := scanner.ScanItinerary(image, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Departure).To(Equal("18-02-2025 14:00"))
		})
	})

	Describe("Close", func() {
		It("closes the wrapped scanner", func() {
			Expect(scanner.Close()).To(Succeed())
			Expect(next.closed).To(BeTrue())
		})
	})
})

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the service's Prometheus metrics.
type Collector struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Billing metrics
	pricingCalculations *prometheus.CounterVec
	validationFailures  prometheus.Counter
	purchasesTotal      *prometheus.CounterVec

	// Discount offer metrics
	offersUpserted prometheus.Counter
	offersClaimed  prometheus.Counter
	offersConsumed prometheus.Counter
	offersSwept    prometheus.Counter
}

var (
	defaultCollector *Collector
	once             sync.Once
)

// Default returns the process-wide collector, registering the metrics on first
// use.
func Default() *Collector {
	once.Do(func() {
		defaultCollector = newCollector()
	})
	return defaultCollector
}

func newCollector() *Collector {
	return &Collector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		pricingCalculations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_calculations_total",
				Help: "Subscription price calculations by outcome",
			},
			[]string{"outcome"},
		),
		validationFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_validation_failures_total",
				Help: "Price breakdowns that failed the consistency check",
			},
		),
		purchasesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscription_purchases_total",
				Help: "Subscription purchase attempts by outcome",
			},
			[]string{"outcome"},
		),
		offersUpserted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discount_offers_upserted_total",
				Help: "Discount offers created or refreshed",
			},
		),
		offersClaimed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discount_offers_claimed_total",
				Help: "Discount offers claimed by users",
			},
		),
		offersConsumed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discount_offers_consumed_total",
				Help: "Discount offers consumed by successful charges",
			},
		),
		offersSwept: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discount_offers_swept_total",
				Help: "Expired discount offers deactivated by the sweeper",
			},
		),
	}
}

func (c *Collector) ObserveHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (c *Collector) PricingCalculation(outcome string) {
	c.pricingCalculations.WithLabelValues(outcome).Inc()
}

func (c *Collector) ValidationFailure() {
	c.validationFailures.Inc()
}

func (c *Collector) Purchase(outcome string) {
	c.purchasesTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) OfferUpserted() { c.offersUpserted.Inc() }
func (c *Collector) OfferClaimed()  { c.offersClaimed.Inc() }
func (c *Collector) OfferConsumed() { c.offersConsumed.Inc() }

func (c *Collector) OffersSwept(count int) {
	c.offersSwept.Add(float64(count))
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetrent_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleetrent_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	rentalsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetrent_rentals_opened_total",
		Help: "Count of rentals opened",
	})

	rentalsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetrent_rentals_closed_total",
		Help: "Count of rentals closed",
	})

	billedDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetrent_rental_billed_days",
		Help:    "Days charged per closed rental",
		Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60},
	})

	rentalRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetrent_rental_revenue_total",
		Help: "Sum of charges across closed rentals",
	})

	availableVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleetrent_available_vehicles",
		Help: "Number of vehicles currently available",
	})

	openRentals = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleetrent_open_rentals",
		Help: "Number of rentals currently open",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetrent_list_cache_lookups_total",
		Help: "List cache lookups by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRentalOpened records a successful rent operation.
func ObserveRentalOpened() {
	rentalsOpened.Inc()
}

// ObserveRentalClosed records a successful return with its billing outcome.
func ObserveRentalClosed(daysCharged int, totalCharge float64) {
	rentalsClosed.Inc()
	billedDays.Observe(float64(daysCharged))
	rentalRevenue.Add(totalCharge)
}

// ObserveCacheLookup records a list cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
}

// SetFleetGauges sets the fleet state gauges, refreshed by the stats worker.
func SetFleetGauges(available, open int) {
	availableVehicles.Set(float64(available))
	openRentals.Set(float64(open))
}

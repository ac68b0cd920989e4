package billing

// MetricUnblendedCost is the Cost Explorer metric for cost without
// cross-account discount allocation
const MetricUnblendedCost = "UnblendedCost"

// Optional holds a value that the provider may have left out
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None is an absent value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts an SDK pointer field, nil meaning absent
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it was present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or def when absent
func (o Optional[T]) OrElse(def T) T {
	if !o.present {
		return def
	}
	return o.value
}

// MetricValue is an amount/unit pair as reported by the provider
type MetricValue struct {
	Amount Optional[string]
	Unit   Optional[string]
}

// Bucket is one time-windowed entry of a report. A nil Totals means the
// provider sent no totals mapping.
type Bucket struct {
	TimePeriod DateInterval
	Totals     map[string]MetricValue
	Estimated  bool
}

// CostReport is the provider's time-bucketed response. Nil Buckets means
// the provider omitted the sequence.
type CostReport struct {
	Buckets []Bucket
}

// Query is the input of a billing provider call
type Query struct {
	Window      DateInterval
	Granularity Granularity
	Metric      string
}

// Cost is the figure distilled from a report
type Cost struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

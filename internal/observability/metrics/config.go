package metrics

// Config carries the const labels stamped on every instrument.
type Config struct {
	ServiceName string
	Environment string
}

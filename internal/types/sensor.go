package types

import "time"

// SensorReading is one immutable sample from the fridge sensors, delivered
// once per cycle by the upstream producer.
type SensorReading struct {
	Temp      float64   `json:"temp"`
	Humidity  float64   `json:"humidity"`
	Gas       int       `json:"gas"`
	Timestamp time.Time `json:"timestamp"`
}

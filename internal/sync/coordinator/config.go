package coordinator

import (
	"time"
)

// CalculateInterval returns the time between passes for the given number of
// monitored servers: the larger of minInterval and the time needed to issue
// one request per server at requestBudget requests per second plus buffer,
// rounded to the second
func CalculateInterval(totalServers int, minInterval time.Duration, requestBudget int, buffer time.Duration) time.Duration {
	if requestBudget <= 0 {
		requestBudget = 1
	}
	needed := time.Duration(float64(totalServers)/float64(requestBudget)*float64(time.Second)) + buffer
	return max(minInterval, needed).Round(time.Second)
}

package metrics

// PendingTimings counts initializations started but not yet finished.
func PendingTimings(c *Collector) int {
	n := 0
	c.started.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

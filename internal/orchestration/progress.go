package orchestration

// ProgressUpdate is sent each time a plan of the batch completes.
type ProgressUpdate struct {
	// Index is the position of the plan in the batch.
	Index int
	// Name is the plan name.
	Name string
	// Done is the number of plans completed so far, including this one.
	Done int
	// Failed reports whether the plan ended with an error.
	Failed bool
}

// Fraction returns the completed share of a batch of total plans, in [0, 1].
func (u ProgressUpdate) Fraction(total int) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(u.Done) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}

package apipe

// stdioSource identifies where a stage's stdin or stdout comes from.
type stdioSource int

const (
	srcInherit stdioSource = iota // parent's own descriptor
	srcPipe                       // inter-stage pipe pair
	srcFeed                       // parent-fed input pipe (stage 0 only)
	srcCapture                    // parent-captured output pipe (terminal stage only)
)

// stagePlan is the resolved wiring for one stage. pair indexes the
// inter-stage pipe pair a srcPipe endpoint belongs to: stdin reads from
// pair in, stdout writes to pair out.
type stagePlan struct {
	stdin  stdioSource
	stdout stdioSource
	in     int
	out    int
}

// connect decides the wiring for n stages without touching the OS. For n
// stages there are exactly n-1 inter-stage pairs, indexed 0..n-2, where
// pair i links stage i's stdout to stage i+1's stdin. feed routes stage
// 0's stdin through a parent-fed pipe; capture routes the terminal
// stage's stdout through a parent-read pipe.
func connect(n int, feed, capture bool) ([]stagePlan, error) {
	if n < 1 {
		return nil, ErrEmptyPipeline
	}

	plans := make([]stagePlan, n)
	for k := range plans {
		plans[k] = stagePlan{stdin: srcInherit, stdout: srcInherit, in: -1, out: -1}
		if k > 0 {
			plans[k].stdin = srcPipe
			plans[k].in = k - 1
		}
		if k < n-1 {
			plans[k].stdout = srcPipe
			plans[k].out = k
		}
	}

	if feed {
		plans[0].stdin = srcFeed
	}
	if capture {
		plans[n-1].stdout = srcCapture
	}

	return plans, nil
}

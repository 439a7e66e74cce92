package observer

import "pfeifer.dev/velfilter/filter"

// Multi fans every event out to each observer in order.
type Multi []filter.Observer

func (m Multi) Smoothed(rep filter.SmoothReport) {
	for _, o := range m {
		o.Smoothed(rep)
	}
}

func (m Multi) Intersected(rep filter.IntersectionReport) {
	for _, o := range m {
		o.Intersected(rep)
	}
}

func (m Multi) Limited(rep filter.LimitReport) {
	for _, o := range m {
		o.Limited(rep)
	}
}

func (m Multi) Failed(op string, err error) {
	for _, o := range m {
		o.Failed(op, err)
	}
}

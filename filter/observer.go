package filter

// Observer receives a report at fixed points of each call. Implementations
// must not retain the reports' slices or influence the result.
type Observer interface {
	Smoothed(SmoothReport)
	Intersected(IntersectionReport)
	Limited(LimitReport)
	Failed(op string, err error)
}

type SmoothReport struct {
	Samples         int
	ForwardClipped  int
	BackwardClipped int
	ForwardRun      int // leading samples taken from the forward pass by the merge
}

type IntersectionReport struct {
	ObstacleID     string
	ObstaclePoints int
	Intersections  int
	CutIn          int
	CutOut         int
}

type LimitReport struct {
	ObstacleID   string
	Samples      int
	TightMatches int
	LooseMatches int
	Reduced      int
}

type NopObserver struct{}

func (NopObserver) Smoothed(SmoothReport) {}
func (NopObserver) Intersected(IntersectionReport) {}
func (NopObserver) Limited(LimitReport) {}
func (NopObserver) Failed(op string, err error) {}

package scraper

// StopReason says why an adapter stopped fetching. Every reason is terminal
// and none of them fails the run.
type StopReason string

const (
	StopNone        StopReason = ""
	StopFetchFailed StopReason = "fetch-failed"
	StopNoElements  StopReason = "no-elements"
	StopCap         StopReason = "cap"
	StopNoNext      StopReason = "no-next"
	StopSinglePage  StopReason = "single-page"
)

// State is either Fetching(Page) or Stopped(Stop).
type State struct {
	Page int
	Stop StopReason
}

func Start() State {
	return State{Page: 1}
}

func (s State) Done() bool {
	return s.Stop != StopNone
}

// PageOutcome is what the adapter learned from one page.
type PageOutcome struct {
	Fetched  bool
	Elements int
	HasNext  bool
}

// Next applies one page outcome. maxPages <= 0 means no cap. Non-paginated
// sources stop after their only page.
func (s State) Next(o PageOutcome, maxPages int, paginated bool) State {
	if s.Done() {
		return s
	}
	switch {
	case !o.Fetched:
		return State{Page: s.Page, Stop: StopFetchFailed}
	case o.Elements == 0:
		return State{Page: s.Page, Stop: StopNoElements}
	case !paginated:
		return State{Page: s.Page, Stop: StopSinglePage}
	case maxPages > 0 && s.Page >= maxPages:
		return State{Page: s.Page, Stop: StopCap}
	case !o.HasNext:
		return State{Page: s.Page, Stop: StopNoNext}
	default:
		return State{Page: s.Page + 1}
	}
}

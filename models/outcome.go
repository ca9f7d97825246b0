package models

// PageOutcome is the result of loading and inspecting one results page.
type PageOutcome int

const (
	ReadyWithData PageOutcome = iota
	ReadyEmpty
	LoadTimeout
	ExtractionFailed
)

func (o PageOutcome) String() string {
	switch o {
	case ReadyWithData:
		return "ready_with_data"
	case ReadyEmpty:
		return "ready_empty"
	case LoadTimeout:
		return "load_timeout"
	case ExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// StopReason is why a pagination run ended.
type StopReason string

const (
	StopPageCap          StopReason = "page_cap"
	StopNoData           StopReason = "no_data"
	StopLoadFailed       StopReason = "load_failed"
	StopExtractionFailed StopReason = "extraction_failed"
	StopCanceled         StopReason = "canceled"
)

// StopReasonFor maps a terminal page outcome to the reason pagination stopped.
// ReadyWithData does not stop pagination and maps to "".
func StopReasonFor(o PageOutcome) StopReason {
	switch o {
	case ReadyEmpty:
		return StopNoData
	case LoadTimeout:
		return StopLoadFailed
	case ExtractionFailed:
		return StopExtractionFailed
	default:
		return ""
	}
}

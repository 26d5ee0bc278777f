package event

// Type is the kind of event a backend call emits while it runs.
type Type string

const (
	TextDelta Type = "text_delta"
	Done      Type = "done"
	Error     Type = "error"
)

type Event struct {
	Type Type
	Data any
}

type TextDeltaData struct {
	Text string
}

type DoneData struct {
	FullText     string
	OutputTokens int64
}

// ErrorData carries a failure. Started is false when the call failed before
// any text was produced.
type ErrorData struct {
	Err     error
	Started bool
}

func Delta(text string) Event {
	return Event{Type: TextDelta, Data: TextDeltaData{Text: text}}
}

func Fail(err error, started bool) Event {
	return Event{Type: Error, Data: ErrorData{Err: err, Started: started}}
}

package examiner

// Outcome classifies how far a turn got through the pipeline.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeEmptyAudio   Outcome = "empty_audio"
	OutcomeNoTranscript Outcome = "no_transcript"
)

// TurnResult is the typed result of one turn. Analyzed, Feedback and
// Question are always set to a string, sentinel text included.
type TurnResult struct {
	Analyzed string
	Feedback string
	Question string

	Outcome          Outcome
	RepairFallback   bool
	ExaminerFallback bool

	PronunciationFlags []PronunciationFlag
}

// Degraded reports whether any step fell back to sentinel or raw text.
func (r TurnResult) Degraded() bool {
	return r.Outcome != OutcomeSuccess || r.RepairFallback || r.ExaminerFallback
}

// WireResponse is the JSON body returned by POST /process-audio.
type WireResponse struct {
	UserTextAnalyzed string `json:"user_text_analyzed"`
	ExaminerFeedback string `json:"examiner_feedback"`
	ExaminerQuestion string `json:"examiner_question"`
}

func (r TurnResult) Wire() WireResponse {
	return WireResponse{
		UserTextAnalyzed: r.Analyzed,
		ExaminerFeedback: r.Feedback,
		ExaminerQuestion: r.Question,
	}
}

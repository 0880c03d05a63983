// Package matrix holds the domain types shared by the catalog, the analysis
// engine and the API: reusable question matrices and the immutable analyses
// finalized from them.
package matrix

import "time"

// ResponseType classifies how a question's answer is meant to be displayed.
// It is carried through storage untouched; prompt construction never varies
// on it.
type ResponseType string

const (
	ResponseText     ResponseType = "text"
	ResponseMultiple ResponseType = "multiple"
	ResponseNumber   ResponseType = "number"
	ResponseBoolean  ResponseType = "boolean"
)

// Valid reports whether the response type is one of the known values.
func (r ResponseType) Valid() bool {
	switch r {
	case ResponseText, ResponseMultiple, ResponseNumber, ResponseBoolean:
		return true
	}
	return false
}

// Question is one unit of inquiry within a matrix. IDs are unique within
// their matrix.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	ResponseType ResponseType `json:"responseType"`
}

// Matrix is a named, owned, ordered list of questions. Question order is
// significant and preserved across edits.
type Matrix struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	UserID    string     `json:"userId"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Question returns the question with the given id, if present.
func (m *Matrix) Question(id string) (Question, bool) {
	for _, q := range m.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Response is one finalized answer, paired with the question it answers.
type Response struct {
	QuestionID string `json:"questionId"`
	Response   string `json:"response"`
}

// Analysis is an immutable snapshot of one finalized answer per question,
// tied to one document and one matrix. The matrix and document it references
// may be deleted later; the analysis survives them.
type Analysis struct {
	ID        string     `json:"id"`
	MatrixID  string     `json:"matrixId"`
	FileID    string     `json:"fileId"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Responses []Response `json:"responses"`
	CreatedAt time.Time  `json:"createdAt"`
}

package types

import "strings"

// Task represents a single image file queued for recognition
type Task struct {
	FilePath string
}

// Match matches the JSON structure of one candidate identity returned by the
// recognition API for a detected face.
type Match struct {
	PersonID       int     `json:"person_id"`
	FaceEncodingID int     `json:"face_encoding_id"`
	Name           string  `json:"name"`
	MatchScore     float64 `json:"match_score"`
	Distance       float64 `json:"distance"`
	Model          string  `json:"model"`
	Quality        float64 `json:"quality"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	Emotion        string  `json:"emotion"`
	BBox           []int   `json:"bbox"` // [x, y, w, h]
}

// Known reports whether this match resolved to an enrolled person rather than
// an unidentified detection.
func (m Match) Known() bool {
	if m.PersonID <= 0 {
		return false
	}
	name := strings.TrimSpace(m.Name)
	return name != "" && !strings.EqualFold(name, "unknown")
}

// RecognitionResponse is the JSON body returned by the recognition endpoint
type RecognitionResponse struct {
	Success    bool    `json:"success"`
	Matches    []Match `json:"matches"`
	TotalFaces int     `json:"total_faces"`
	Message    string  `json:"message"`
}

// Result is the per-file outcome carried from a pool worker to the aggregator.
// Err is set for transport/decode failures; Resp is set when the API answered.
type Result struct {
	FilePath string
	Resp     *RecognitionResponse
	Err      error
}

// ErrorResult captures the error object some API deployments return on failure
type ErrorResult struct {
	Error string `json:"error"`
}

// Package normalize flattens the variable-length match list of an API
// response into the fixed-width row written to the CSV.
package normalize

import (
	"github.com/andresmejia3/facebatch/internal/types"
)

// MaxFaceColumns is how many matches get their own column group in the CSV.
// Matches beyond this are dropped from columnar output, but TotalFaces and
// Message still reflect the true count.
const MaxFaceColumns = 5

// Policy controls match reordering and row filtering.
type Policy struct {
	// PrioritizeKnown moves identified persons ahead of unknown detections
	// before truncation, preserving relative order within each group.
	PrioritizeKnown bool
	// SkipUnknown drops a row when every match is unknown, the match count
	// fits in the column window, and the call succeeded.
	SkipUnknown bool
}

// Row is one flattened output record: one per image, written once.
type Row struct {
	FilePath   string
	Success    bool
	Error      string
	TotalFaces int
	Message    string
	Faces      []types.Match // at most MaxFaceColumns entries
}

// Reorder applies the prioritize-known policy: a stable partition with known
// matches first.
func Reorder(matches []types.Match) []types.Match {
	out := make([]types.Match, 0, len(matches))
	for _, m := range matches {
		if m.Known() {
			out = append(out, m)
		}
	}
	known := len(out)
	for _, m := range matches {
		if !m.Known() {
			out = append(out, m)
		}
	}
	if known == 0 {
		return matches
	}
	return out
}

// Apply turns a per-file result into a Row. The second return value is false
// when the skip-unknown policy drops the row.
//
// Policy order: prioritize first, then evaluate the skip condition on the
// reordered but untruncated list. A row with more matches than the column
// window is always kept, since a known person may hide beyond it.
func Apply(res types.Result, p Policy) (Row, bool) {
	if res.Err != nil {
		return Row{
			FilePath: res.FilePath,
			Success:  false,
			Error:    res.Err.Error(),
		}, true
	}

	resp := res.Resp
	matches := resp.Matches
	if p.PrioritizeKnown {
		matches = Reorder(matches)
	}

	if p.SkipUnknown && resp.Success && len(matches) <= MaxFaceColumns {
		anyKnown := false
		for _, m := range matches {
			if m.Known() {
				anyKnown = true
				break
			}
		}
		if !anyKnown {
			return Row{}, false
		}
	}

	truncated := matches
	if len(truncated) > MaxFaceColumns {
		truncated = truncated[:MaxFaceColumns]
	}

	row := Row{
		FilePath:   res.FilePath,
		Success:    resp.Success,
		TotalFaces: resp.TotalFaces,
		Message:    resp.Message,
		Faces:      truncated,
	}
	if !resp.Success && resp.Message != "" {
		row.Error = resp.Message
	}
	return row, true
}

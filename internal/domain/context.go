package domain

// ContextSnapshot describes the working environment handed to the translator
// and folded into history records.
type ContextSnapshot struct {
	WorkingDir string
	Shell      string
	User       string
	Tags       []string
	Files      []string
}

// PrimaryTag returns the highest-confidence context tag, or empty when the
// directory matched no project markers.
func (s ContextSnapshot) PrimaryTag() string {
	if len(s.Tags) == 0 {
		return ""
	}
	return s.Tags[0]
}

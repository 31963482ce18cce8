package components

// PageData is used by the home page to configure the editor script.
type PageData struct {
	Title          string
	ExportFilename string
	NudgeStep      float64
	NudgeStepFast  float64
}

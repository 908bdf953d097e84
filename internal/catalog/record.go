package catalog

// Icon is one technology badge displayed on a project card.
type Icon struct {
	Class   string `json:"class"`
	Tooltip string `json:"tooltip"`
}

// Record is one portfolio project as it appears in a single locale document.
//
// Identifier and every field from InitialDate onwards are shared across
// locales and must stay byte-identical in all three documents; Title and
// Description are per-locale. Field order here is the persisted field order;
// keep it stable so catalog diffs stay readable.
type Record struct {
	Identifier  string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Image is the root-relative path of the thumbnail asset.
	Image string `json:"image"`
	// Images are root-relative gallery asset paths; order is user-controlled.
	Images []string `json:"images"`

	InitialDate          string  `json:"initialDate"`
	EndDate              string  `json:"endDate"`
	ProjectURL           string  `json:"projectUrlLink"`
	LinkedinURL          string  `json:"linkedinUrlLink"`
	GithubURL            string  `json:"githubUrlLink"`
	Developed            bool    `json:"developed"`
	DevelopingPercentage float64 `json:"developingPercentage"`
	Compatibility        int     `json:"compatibility"`
	Icons                []Icon  `json:"icons"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Images = append([]string(nil), r.Images...)
	out.Icons = append([]Icon(nil), r.Icons...)
	return &out
}

// AssetPaths returns every asset path the record references (thumbnail first).
func (r *Record) AssetPaths() []string {
	paths := make([]string, 0, len(r.Images)+1)
	if r.Image != "" {
		paths = append(paths, r.Image)
	}
	paths = append(paths, r.Images...)
	return paths
}

package contentsync

// Page carries what every signed-in page renders: the site name, the
// current user and the form token.
type Page struct {
	Site      string
	User      User
	CSRFToken string
	Active    string // nav section
}

// AuthPage is the data for the login and signup forms.
type AuthPage struct {
	Site      string
	Error     string
	Email     string
	CSRFToken string
}

type DashboardPage struct {
	Page
	Stats     DashboardStats
	Platforms []Platform
	Gaps      []ContentGap
	Recent    []RepurposedContent
}

type PlatformsPage struct {
	Page
	Platforms []Platform
	Message   string
	Error     string
}

type ContentGapsPage struct {
	Page
	Gaps []ContentGap
}

type RepurposePage struct {
	Page
	Form       RepurposeForm
	Result     *RepurposedContent
	Error      string
	Configured bool
	Model      string
}

type ReviewQueuePage struct {
	Page
	Items  []RepurposedContent
	Filter ReviewStatus
	Counts map[ReviewStatus]int
}

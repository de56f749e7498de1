package types

type NavbarData struct {
	IsAdmin    bool
	ActivePath string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Summary ReportSummary
	Recent  []*Report
}

type AboutPageData struct {
	BasePageData
}

// SubmissionState is the lifecycle of the report form as seen by the page.
type SubmissionState string

const (
	SubmissionIdle      SubmissionState = "idle"
	SubmissionSucceeded SubmissionState = "succeeded"
	SubmissionFailed    SubmissionState = "failed"
)

type SeverityOption struct {
	Value       Severity
	Label       string
	Description string
	Selected    bool
}

type ReportFormPageData struct {
	BasePageData
	State           SubmissionState
	SubmittedID     string
	Latitude        string
	Longitude       string
	Severity        Severity
	SeverityOptions []SeverityOption
	Description     string
	ReporterName    string
	ReporterEmail   string
	MaxImages       int
	MaxImageMB      int64
	FieldErrors     map[string]string
}

type FilterOption struct {
	Value    string
	Label    string
	Selected bool
}

type MapPageData struct {
	BasePageData
	Query           ReportQuery
	FeedURL         string
	ReportCount     int
	SeverityOptions []FilterOption
	StatusOptions   []FilterOption
	CenterLat       float64
	CenterLng       float64
}

type ReportDetailPageData struct {
	BasePageData
	Report *Report
	Events []*ReportStatusEvent
}

type AdminLoginPageData struct {
	BasePageData
}

type AdminReportRow struct {
	Report        *Report
	StatusOptions []FilterOption
}

type AdminDashboardPageData struct {
	BasePageData
	Query         ReportQuery
	QueryString   string
	Rows          []AdminReportRow
	Summary       ReportSummary
	StatusOptions []FilterOption
	SortOptions   []FilterOption
}

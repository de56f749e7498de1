package types

// ReportForm is the text half of the multipart report form. Images are read
// from the multipart file headers separately.
type ReportForm struct {
	Latitude      *float64 `form:"latitude"`
	Longitude     *float64 `form:"longitude"`
	Severity      Severity `form:"severity"`
	Description   string   `form:"description"`
	ReporterName  string   `form:"reporter_name"`
	ReporterEmail string   `form:"reporter_email"`
}

// ReportFilterForm is the query string of the map and dashboard views.
type ReportFilterForm struct {
	Status   string `form:"status"`
	Severity string `form:"severity"`
	Sort     string `form:"sort"`
}

type StatusUpdateForm struct {
	Status Status `form:"status"`
	Return string `form:"return"`
}

type AdminLoginForm struct {
	Password string `form:"password"`
}

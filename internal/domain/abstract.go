package domain

import "time"

// NotStated is the value recorded for a lease field absent from the document
const NotStated = "Not Stated"

// XLSXContentType is the MIME type of a generated abstract workbook
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaseFields are the fields of a lease abstract, in output order
var LeaseFields = []string{
	"Transaction Type", "Document Date", "Tenant Legal Name", "Guarantor(s)",
	"Landlord Legal Name", "Landlord Broker", "Tenant Broker", "Building Address",
	"Suite Number(s)", "Square Footage", "Effective Date", "Who pays for what expenses? Pro-Rata Share?",
	"Base Rent Schedule", "Percentage Rent", "Commencement Date", "Rent Commencement Date",
	"Expiration Date", "Lease Term", "Rent Increases", "Tenant Improvements / Tenant Improvement Allowance",
	"Free rent (concession)", "Renewal Option(s) to Extend", "Early Termination", "Rent Abatement",
	"Right to Sublet", "Security Deposit Amount", "Letter of Credit Amount", "Late Fee",
}

// AbstractField is one extracted lease field
type AbstractField struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// Abstract is a stored, downloadable lease abstract workbook
type Abstract struct {
	Filename  string    `json:"filename"`
	Source    string    `json:"source"`
	Content   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadResponse is the body of POST /upload
type UploadResponse struct {
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LeaseResult is what a client surfaces after a lease upload
type LeaseResult struct {
	DownloadURL string
	Error       string
}

package edgar

import (
	"fmt"
	"time"
)

// submissionsResponse is the shape of the EDGAR submissions endpoint:
// filing history as parallel arrays keyed by index.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g. "0000950170-24-000012"
	FilingDate      []string `json:"filingDate"`      // e.g. "2024-02-06"
	ReportDate      []string `json:"reportDate"`      // fiscal period end
	Form            []string `json:"form"`            // "10-K", "10-Q", ...
	PrimaryDocument []string `json:"primaryDocument"` // filename
}

// Filing is one discovered filing, denormalized from the parallel arrays.
type Filing struct {
	AccessionNumber string
	CIK             string
	FormType        string
	FilingDate      time.Time
	ReportDate      time.Time
	PrimaryDocument string
	DocumentURL     string
}

// DiscoveryError means the filing index was unreachable or returned a
// non-success status. Retry policy belongs to the caller.
type DiscoveryError struct {
	CIK string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("filing discovery failed for CIK %s: %v", e.CIK, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// RetrievalError means a filing document fetch failed.
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("document retrieval failed for %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

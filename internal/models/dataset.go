package models

import "time"

// ReviewStatus is the approval state shared by datasets, research outputs and applications.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "PENDING"
	StatusApproved ReviewStatus = "APPROVED"
	StatusRejected ReviewStatus = "REJECTED"
)

// Dataset is a published (or pending) research dataset.
type Dataset struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Type          string       `json:"type,omitempty"`
	ProviderID    string       `json:"providerId"`
	InstitutionID string       `json:"institutionId,omitempty"`
	Status        ReviewStatus `json:"status,omitempty"`
	Published     bool         `json:"published"`
	CreatedAt     time.Time    `json:"createdAt,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt,omitempty"`
}

// Identity returns the dataset id used for list deduplication.
func (d Dataset) Identity() string { return d.ID }

// ResearchOutput is a paper, patent or other result produced from a dataset.
type ResearchOutput struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type,omitempty"`
	DatasetID   string       `json:"datasetId,omitempty"`
	SubmitterID string       `json:"submitterId,omitempty"`
	Status      ReviewStatus `json:"status,omitempty"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
}

// Identity returns the research output id.
func (o ResearchOutput) Identity() string { return o.ID }

// Application is an access request against a dataset.
type Application struct {
	ID                   string       `json:"id"`
	DatasetID            string       `json:"datasetId"`
	DatasetTitle         string       `json:"datasetTitle,omitempty"`
	DatasetInstitutionID string       `json:"datasetInstitutionId,omitempty"`
	ProviderID           string       `json:"providerId,omitempty"`
	ApplicantID          string       `json:"applicantId"`
	ApplicantName        string       `json:"applicantName,omitempty"`
	Purpose              string       `json:"projectDescription,omitempty"`
	Status               ReviewStatus `json:"status,omitempty"`
	SubmittedAt          time.Time    `json:"submittedAt,omitempty"`
}

// Identity returns the application id.
func (a Application) Identity() string { return a.ID }

// ReviewRequest is the body of approve/reject calls.
type ReviewRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty"`
}

package model

import "time"

type SessionState string

const (
	SessionUninitialized SessionState = "uninitialized"
	SessionActive        SessionState = "active"
	SessionSubmitting    SessionState = "submitting"
	SessionComplete      SessionState = "complete"
)

// SessionSnapshot is the in-flight survey state kept in Redis between requests.
// It is deleted when the session is submitted or abandoned.
type SessionSnapshot struct {
	ID            string         `json:"id"`
	MemberID      string         `json:"memberId"`
	GenderOnFile  string         `json:"genderOnFile,omitempty"`
	TreeVersion   string         `json:"treeVersion"` // catalog the session started on
	State         SessionState   `json:"state"`
	CategoryID    int            `json:"categoryId"`
	SubCategoryID int            `json:"subCategoryId"`
	CategorySlot  int            `json:"categorySlot"`    // last resolved category index
	SubSlot       int            `json:"subCategorySlot"` // last resolved subcategory index
	Answers       map[int]Answer `json:"answers"`
	Visited       []int          `json:"visited"` // subcategory ids in visit order
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

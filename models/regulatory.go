package models

import "time"

// KnownListing is the (id, name) pair the entity matcher links notices to.
type KnownListing struct {
	ID   int64
	Name string
}

// Official is a seeded reviewer-official lookup row.
type Official struct {
	Code      string
	FirstName string
	LastName  string
	Role      string
}

// Notice is one structured regulatory notice, inserted only when every
// field could be resolved.
type Notice struct {
	Code         string
	Type         string
	Status       string
	Outcome      string
	Actions      string
	ListingID    int64
	OfficialCode string
	Date         time.Time
	TimeID       int64
}

// ComplianceFact is the denormalized reporting row built from a Notice.
type ComplianceFact struct {
	ListingID    int64
	OfficialCode string
	NoticeCode   string
	Date         time.Time
	Total        int
	Compliant    int
	NonCompliant int
}

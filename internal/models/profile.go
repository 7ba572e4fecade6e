package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Social holds optional links shown on a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"   bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"   bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"  bson:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"  bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Experience is one job entry. Entries are kept most-recent-first.
type Experience struct {
	ID          primitive.ObjectID `json:"_id"                   bson:"_id"`
	Title       string             `json:"title"                 bson:"title"`
	Company     string             `json:"company"               bson:"company"`
	Location    string             `json:"location,omitempty"    bson:"location,omitempty"`
	From        time.Time          `json:"from"                  bson:"from"`
	To          *time.Time         `json:"to,omitempty"          bson:"to,omitempty"`
	Current     bool               `json:"current"               bson:"current"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is one school entry. Entries are kept most-recent-first.
type Education struct {
	ID           primitive.ObjectID `json:"_id"                   bson:"_id"`
	School       string             `json:"school"                bson:"school"`
	Degree       string             `json:"degree"                bson:"degree"`
	FieldOfStudy string             `json:"fieldofstudy"          bson:"fieldofstudy"`
	From         time.Time          `json:"from"                  bson:"from"`
	To           *time.Time         `json:"to,omitempty"          bson:"to,omitempty"`
	Current      bool               `json:"current"               bson:"current"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
}

// ProfileFields are the fields replaced by a profile upsert. Experience and
// education are managed separately.
type ProfileFields struct {
	Company        string   `bson:"company"`
	Website        string   `bson:"website"`
	Location       string   `bson:"location"`
	Bio            string   `bson:"bio"`
	Status         string   `bson:"status"`
	GitHubUsername string   `bson:"githubusername"`
	Skills         []string `bson:"skills"`
	Social         Social   `bson:"social"`
}

// Profile is one user's developer profile stored in MongoDB.
type Profile struct {
	ID             primitive.ObjectID `json:"_id"            bson:"_id,omitempty"`
	UserID         string             `json:"-"              bson:"user"`
	User           *UserSummary       `json:"user"           bson:"-"` // joined on read
	Company        string             `json:"company"        bson:"company"`
	Website        string             `json:"website"        bson:"website"`
	Location       string             `json:"location"       bson:"location"`
	Bio            string             `json:"bio"            bson:"bio"`
	Status         string             `json:"status"         bson:"status"`
	GitHubUsername string             `json:"githubusername" bson:"githubusername"`
	Skills         []string           `json:"skills"         bson:"skills"`
	Social         Social             `json:"social"         bson:"social"`
	Experience     []Experience       `json:"experience"     bson:"experience"`
	Education      []Education        `json:"education"      bson:"education"`
	CreatedAt      time.Time          `json:"date"           bson:"date"`
}

// Normalize replaces nil lists so they serialize as [].
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// Apply copies upsert fields onto p.
func (p *Profile) Apply(f ProfileFields) {
	p.Company = f.Company
	p.Website = f.Website
	p.Location = f.Location
	p.Bio = f.Bio
	p.Status = f.Status
	p.GitHubUsername = f.GitHubUsername
	p.Skills = f.Skills
	p.Social = f.Social
}

// ProfileRequest is the JSON body for POST /api/profile. Skills is a
// comma-separated list.
type ProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// ExperienceRequest is the JSON body for PUT /api/profile/experience.
type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationRequest is the JSON body for PUT /api/profile/education.
type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

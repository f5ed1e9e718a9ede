package models

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/workdesk/pkg/tz"
)

// WorkSubmission is a piece of work sent up for review.
type WorkSubmission struct {
	RequestBase
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	WorkDate    string `json:"work_date"`
}

type CreateSubmissionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	WorkDate    string `json:"work_date"`
}

func (r *CreateSubmissionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if n := utf8.RuneCountInString(r.Title); n < 1 || n > 200 {
		return fmt.Errorf("title must be between 1 and 200 characters")
	}
	r.Description = strings.TrimSpace(r.Description)
	if utf8.RuneCountInString(r.Description) > 5000 {
		return fmt.Errorf("description must be at most 5000 characters")
	}
	r.Link = strings.TrimSpace(r.Link)
	if r.Link != "" {
		u, err := url.Parse(r.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("link must be an absolute http(s) URL")
		}
	}
	if _, err := tz.ParseDate(r.WorkDate); err != nil {
		return fmt.Errorf("work_date must be YYYY-MM-DD")
	}
	return nil
}

package domain

import "context"

// UserChoice is the user's answer to an update prompt.
type UserChoice string

const (
	ChoiceAccept  UserChoice = "accept"
	ChoiceDefer   UserChoice = "defer"
	ChoiceDisable UserChoice = "disable"
)

// Presenter renders decisions and collects user choices. Implementations
// cross the UI boundary; the core only hands them finished values.
//
// PromptUpdate blocks until the user chooses or ctx is canceled. A canceled
// prompt is reported as ChoiceDefer so an abandoned dialog never downloads
// or opts out on the user's behalf.
type Presenter interface {
	PromptUpdate(ctx context.Context, decision UpdateDecision, local LocalCatalogState) (UserChoice, error)
	ShowAnnouncements(ctx context.Context, announcements []Announcement) error
	NotifyFailure(ctx context.Context, message string)
}

package shared

import (
	"github.com/joe/dirnav/internal/iconcache"
)

// NavigateMsg asks the view to open a directory. Focus, when set, is the
// entry path to put the cursor on once it is listed.
type NavigateMsg struct {
	Path  string
	Focus string
}

// ReloadMsg asks the view to drop the current directory's cache and list it again.
type ReloadMsg struct{}

// IconResultsMsg carries decoded icons back to the owner of the icon cache.
type IconResultsMsg struct {
	Results []iconcache.FetchResult
}

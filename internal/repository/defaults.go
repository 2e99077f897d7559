package repository

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/newshub/internal/model"
)

// articleDateFormat is the human-readable creation date stamped on every
// article, e.g. "Nov 18, 2025". Clients display it verbatim.
const articleDateFormat = "Jan 2, 2006"

// placeholderImage is the fallback image for articles submitted without one.
const placeholderImage = "https://via.placeholder.com/400x300"

// ApplyArticleDefaults fills the repository-assigned fields of a new
// article: a unique ID, the creation date, and a placeholder image
// referencing the title when the client supplied none. Both storage
// backends call this from Create so the defaults are identical regardless
// of driver.
func ApplyArticleDefaults(a *model.Article, now time.Time) {
	if a.ID == "" {
		a.ID = xid.New().String()
	}
	if a.Date == "" {
		a.Date = now.Format(articleDateFormat)
	}
	if a.Image == "" {
		a.Image = fmt.Sprintf("%s?text=%s", placeholderImage, url.QueryEscape(a.Title))
	}
}

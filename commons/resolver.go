package commons

import (
	"sort"
	"strconv"

	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/mwlib"
	"github.com/pkg/errors"
)

// ErrCategoryNotFound is returned when a category page doesn't exist and
// has no members either.
var ErrCategoryNotFound = errors.New("category not found")

// Category identifies what to count.
type Category struct {
	Name      string // With or without the Category: prefix.
	Recursive bool   // Also count files in subcategories.
	Depth     int    // Maximum subcategory depth when Recursive. Zero means no limit.
}

// Title returns the category's page title.
func (c Category) Title() string {
	return CategoryTitle(c.Name)
}

// Media types counted as images. Everything else (PDF scans, audio, video)
// is only counted with AllFiles.
var imageMediaTypes = map[string]bool{
	"BITMAP":  true,
	"DRAWING": true,
}

// Resolver counts the image files in Commons categories.
type Resolver struct {
	client mwlib.Getter

	// AllFiles counts every file rather than only bitmaps and drawings.
	AllFiles bool
}

// NewResolver returns a Resolver reading through client, normally an
// anonymous *mwclient.Client for Commons.
func NewResolver(client mwlib.Getter) *Resolver {
	return &Resolver{client: client}
}

// Count returns the number of image files in the category. When the
// category is recursive, each subcategory down to the depth limit is
// visited once and a file that appears in several of them counts once.
func (r *Resolver) Count(cat Category) (int, error) {
	files, err := r.Files(cat)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Files returns the sorted titles of the files counted by Count.
func (r *Resolver) Files(cat Category) ([]string, error) {
	root := cat.Title()
	if err := r.checkExists(root); err != nil {
		return nil, err
	}
	media := make(map[string]string) // file title -> media type
	visited := map[string]bool{root: true}
	level := []string{root}
	for depth := 0; len(level) > 0; depth++ {
		var next []string
		for _, title := range level {
			if err := r.collectFiles(title, media); err != nil {
				return nil, err
			}
			if !cat.Recursive || (cat.Depth > 0 && depth >= cat.Depth) {
				continue
			}
			subcats, err := r.Subcategories(title)
			if err != nil {
				return nil, err
			}
			for _, sub := range subcats {
				if !visited[sub] {
					visited[sub] = true
					next = append(next, sub)
				}
			}
		}
		level = next
	}
	files := make([]string, 0, len(media))
	for title, mediaType := range media {
		if r.AllFiles || imageMediaTypes[mediaType] {
			files = append(files, title)
		}
	}
	sort.Strings(files)
	log.WithField("category", root).Debugf("%d files counted in %d categories", len(files), len(visited))
	return files, nil
}

func (r *Resolver) checkExists(title string) error {
	json, err := r.client.Get(params.Values{
		"action":        "query",
		"titles":        title,
		"prop":          "categoryinfo",
		"formatversion": "2",
	})
	if err != nil {
		return errors.Wrapf(err, "querying %s", title)
	}
	if mwlib.GetJsonPage(json) == nil {
		return errors.Wrap(ErrCategoryNotFound, title)
	}
	return nil
}

// Add the files directly in a category to media, keyed by title. With
// imageinfo continuation a page may come back once without imageinfo, so
// an empty media type never overwrites a known one.
func (r *Resolver) collectFiles(title string, media map[string]string) error {
	p := params.Values{
		"generator": "categorymembers",
		"gcmtitle":  title,
		"gcmtype":   "file",
		"gcmlimit":  "max",
		"prop":      "imageinfo",
		"iiprop":    "mediatype",
	}
	err := mwlib.Query(r.client, p, func(resp *jason.Object) error {
		pages, err := resp.GetObjectArray("query", "pages")
		if err != nil {
			// Empty result set.
			return nil
		}
		for _, page := range pages {
			fileTitle, err := page.GetString("title")
			if err != nil {
				return errors.Wrap(err, "file without title")
			}
			mediaType := ""
			if info, err := page.GetObjectArray("imageinfo"); err == nil && len(info) > 0 {
				mediaType, _ = info[0].GetString("mediatype")
			}
			if prev, found := media[fileTitle]; !found || prev == "" {
				media[fileTitle] = mediaType
			}
		}
		return nil
	})
	return errors.Wrapf(err, "listing files in %s", title)
}

// Subcategories returns the titles of the categories directly inside the
// given category.
func (r *Resolver) Subcategories(title string) ([]string, error) {
	title = CategoryTitle(title)
	p := params.Values{
		"list":    "categorymembers",
		"cmtitle": title,
		"cmtype":  "subcat",
		"cmlimit": "max",
	}
	var subcats []string
	err := mwlib.Query(r.client, p, func(resp *jason.Object) error {
		members, err := resp.GetObjectArray("query", "categorymembers")
		if err != nil {
			return nil
		}
		for _, member := range members {
			sub, err := member.GetString("title")
			if err != nil {
				return errors.Wrap(err, "subcategory without title")
			}
			subcats = append(subcats, sub)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing subcategories of %s", title)
	}
	log.WithField("category", title).Debugf("found %d subcategories", len(subcats))
	return subcats, nil
}

// FilePermalink returns a URL pointing at the current revision of a file
// page.
func (r *Resolver) FilePermalink(file string) (string, error) {
	title := FileTitle(file)
	json, err := r.client.Get(params.Values{
		"action":        "query",
		"titles":        title,
		"prop":          "info",
		"formatversion": "2",
	})
	if err != nil {
		return "", errors.Wrapf(err, "querying %s", title)
	}
	page := mwlib.GetJsonPage(json)
	if page == nil {
		return "", errors.Errorf("%s does not exist, possibly deleted", title)
	}
	revision, err := page.GetInt64("lastrevid")
	if err != nil {
		return "", errors.Wrapf(err, "no revision for %s", title)
	}
	return permalink(title, revision), nil
}

func permalink(title string, revision int64) string {
	return indexURL + "?title=" + queryEscape(title) + "&oldid=" + strconv.FormatInt(revision, 10)
}

// FileInfo is what a depicts statement needs to know about a file.
type FileInfo struct {
	MediaInfo  string   // M followed by the page id.
	Permalink  string   // URL of the current revision.
	Categories []string // Titles of the categories holding the file.
}

// Maximum number of titles in one query for a non-bot account.
const titlesPerQuery = 50

// FileInfos reads the page ids, revisions and categories of files, keyed
// by file title. Missing files are left out.
func (r *Resolver) FileInfos(files []string) (map[string]*FileInfo, error) {
	infos := make(map[string]*FileInfo)
	for start := 0; start < len(files); start += titlesPerQuery {
		end := start + titlesPerQuery
		if end > len(files) {
			end = len(files)
		}
		titles := make([]string, 0, end-start)
		for _, file := range files[start:end] {
			titles = append(titles, FileTitle(file))
		}
		p := params.Values{
			"titles":  mwlib.MakeTitleString(titles),
			"prop":    "info|categories",
			"cllimit": "max",
		}
		err := mwlib.Query(r.client, p, func(resp *jason.Object) error {
			pages, err := resp.GetObjectArray("query", "pages")
			if err != nil {
				return nil
			}
			for _, page := range pages {
				if mwlib.PageMissing(page) {
					continue
				}
				title, err := page.GetString("title")
				if err != nil {
					return errors.Wrap(err, "file without title")
				}
				info := infos[title]
				if info == nil {
					info = &FileInfo{}
					infos[title] = info
				}
				if id, err := page.GetInt64("pageid"); err == nil {
					info.MediaInfo = "M" + strconv.FormatInt(id, 10)
				}
				if revision, err := page.GetInt64("lastrevid"); err == nil {
					info.Permalink = permalink(title, revision)
				}
				categories, _ := page.GetObjectArray("categories")
				for _, cat := range categories {
					if catTitle, err := cat.GetString("title"); err == nil {
						info.Categories = append(info.Categories, catTitle)
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "reading file pages %s", titles[0])
		}
	}
	for title, info := range infos {
		if info.MediaInfo == "" {
			delete(infos, title)
		}
	}
	return infos, nil
}

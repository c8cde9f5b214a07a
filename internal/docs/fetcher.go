// Package docs mirrors published documentation versions and extracts the
// page fragments the site embeds: the intro blocks, the tutorial index and
// the example gallery.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
)

// linkPrefix is prepended to relative links inside extracted fragments so
// they resolve against the site's own documentation routes.
const linkPrefix = "documentation/latest/"

// Fetcher pulls rendered documentation pages from the raw content host and
// extracts display fragments from them.
type Fetcher struct {
	client         *http.Client
	rawBase        string
	introContainer string
	logger         logger.Logger
}

func NewFetcher(client *http.Client, rawBase, introContainer string, log logger.Logger) *Fetcher {
	if !strings.HasSuffix(rawBase, "/") {
		rawBase += "/"
	}
	return &Fetcher{
		client:         client,
		rawBase:        rawBase,
		introContainer: introContainer,
		logger:         log,
	}
}

// fragmentPage is the JSON shape of a rendered documentation page.
type fragmentPage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// fetchPage resolves a documentation page, trying the flat page name first
// and the directory index second. A page missing under both shapes is not an
// error: the caller gets found=false and empty content.
func (f *Fetcher) fetchPage(ctx context.Context, version, path string) (page fragmentPage, found bool, err error) {
	url := f.rawBase + version + "/" + path + ".fjson"
	page, found, err = f.fetchJSON(ctx, url)
	if err != nil || found {
		return page, found, err
	}

	url = f.rawBase + version + "/" + path + "/index.fjson"
	return f.fetchJSON(ctx, url)
}

func (f *Fetcher) fetchJSON(ctx context.Context, url string) (fragmentPage, bool, error) {
	var page fragmentPage

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return page, false, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return page, false, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return page, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return page, false, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, false, fmt.Errorf("decode %s: %w", url, err)
	}

	return page, true, nil
}

// FetchIntro extracts the three intro fragments from the version's index
// page: the leading paragraph, the announcements block and the highlights
// block. A missing page or container yields empty fragments, not an error.
func (f *Fetcher) FetchIntro(ctx context.Context, version string) (models.IntroFragments, error) {
	var intro models.IntroFragments

	page, found, err := f.fetchPage(ctx, version, "index")
	if err != nil || !found {
		return intro, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return intro, fmt.Errorf("parse index page: %w", err)
	}

	container := doc.Find("div#" + f.introContainer).First()
	if container.Length() == 0 {
		f.logger.Warn("intro container not found",
			logger.String("version", version),
			logger.String("container", f.introContainer))
		return intro, nil
	}

	leading := container.Find("p").First()
	leading.AddClass("text-center")
	intro.Text = outerHTML(leading)

	highlights := container.Find("div#highlights").First()
	if highlights.Length() > 0 {
		highlights.Find("h2").First().Remove()
		rewriteLinks(highlights)
		intro.Highlights = outerHTML(highlights)
	}

	announcements := container.Find("div#announcements").First()
	if announcements.Length() > 0 {
		announcements.Find("h2").First().Remove()
		rewriteLinks(announcements)
		f.rewriteImages(announcements, version)
		intro.Announcements = outerHTML(announcements)
	}

	return intro, nil
}

// FetchTutorials walks the examples index and rebuilds its section tree:
// major sections (h2) holding either examples directly or minor sections
// (h3) of examples. Sections that yield no examples stay in the output with
// Valid set to false.
func (f *Fetcher) FetchTutorials(ctx context.Context, version string) ([]models.ExampleGroup, error) {
	const path = "examples_index"

	page, found, err := f.fetchPage(ctx, version, path)
	if err != nil || !found {
		return nil, err
	}

	// Pilcrow permalink markers leak into section titles otherwise.
	body := strings.ReplaceAll(page.Body, "¶", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse examples index: %w", err)
	}

	var groups []models.ExampleGroup
	doc.Find("div#examples").First().ChildrenFiltered("div.section").Each(func(_ int, major *goquery.Selection) {
		group := models.ExampleGroup{
			Title: outerHTML(major.Find("h2").First()),
			Valid: true,
		}

		minors := major.ChildrenFiltered("div.section")
		if minors.Length() == 0 {
			group.Examples = f.examplesFromList(ctx, version, path, major.Find("ul").First())
			group.Valid = len(group.Examples) > 0
		} else {
			minors.Each(func(_ int, minor *goquery.Selection) {
				sub := models.ExampleGroup{
					Title:    outerHTML(minor.Find("h3").First()),
					Examples: f.examplesFromList(ctx, version, path, minor.Find("ul").First()),
				}
				sub.Valid = len(sub.Examples) > 0
				group.Groups = append(group.Groups, sub)
			})
		}

		groups = append(groups, group)
	})

	return groups, nil
}

// FetchGallery collects every example linked from the examples index as a
// flat list, keeping the extracted images for the front page gallery.
func (f *Fetcher) FetchGallery(ctx context.Context, version string) ([]models.Example, error) {
	const path = "examples_index"

	page, found, err := f.fetchPage(ctx, version, path)
	if err != nil || !found {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse examples index: %w", err)
	}

	var examples []models.Example
	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if !strings.HasPrefix(href, "../examples_built") {
			return
		}

		example, err := f.fetchExample(ctx, version, path, href)
		if err != nil {
			f.logger.Warn("skipping gallery example",
				logger.String("version", version),
				logger.String("href", href),
				logger.Error(err))
			return
		}

		// Anchor fragments point inside the page; the gallery links the
		// page itself.
		example.Link = "/documentation/" + version + "/" + path + "/" + strings.SplitN(href, "#", 2)[0]
		examples = append(examples, *example)
	})

	return examples, nil
}

// examplesFromList resolves the example links under one ul of the examples
// index. Examples whose page cannot be fetched are logged and skipped.
func (f *Fetcher) examplesFromList(ctx context.Context, version, path string, list *goquery.Selection) []models.Example {
	var examples []models.Example

	list.Find("li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		href := link.AttrOr("href", "")
		if !strings.HasPrefix(href, "../examples_built") {
			return
		}

		example, err := f.fetchExample(ctx, version, path, href)
		if err != nil {
			f.logger.Warn("skipping example",
				logger.String("version", version),
				logger.String("href", href),
				logger.Error(err))
			return
		}

		example.Link = "/documentation/" + version + "/" + path + "/" + href
		examples = append(examples, *example)
	})

	return examples
}

// fetchExample pulls one example page and extracts its title, the first
// paragraph as description, and the image tags with relative sources
// rewritten against the index page's directory.
func (f *Fetcher) fetchExample(ctx context.Context, version, path, href string) (*models.Example, error) {
	// href looks like ../examples_built/<group>/<page>.html#anchor; the
	// page fragment lives one level up at <group>.fjson.
	parts := strings.Split(strings.TrimPrefix(href, "../"), "/")
	rel := strings.Join(parts[:len(parts)-1], "/")
	url := f.rawBase + version + "/" + rel + ".fjson"

	page, found, err := f.fetchJSON(ctx, url)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("example page %s not found", url)
	}

	urlDir := f.rawBase + version + "/" + path + ".fjson/"
	body := strings.ReplaceAll(page.Body, `src="../`, `src="`+urlDir)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse example page: %w", err)
	}

	example := &models.Example{
		Title:       stripTags(page.Title),
		Description: doc.Find("p").First().Text(),
		Images:      []string{},
	}
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		example.Images = append(example.Images, outerHTML(img))
	})

	return example, nil
}

// rewriteLinks points relative hrefs at the site's documentation routes.
// Anchors and absolute URLs are left alone.
func rewriteLinks(sel *goquery.Selection) {
	sel.Find("a").Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "#") ||
			strings.Contains(lower, "http:/") ||
			strings.Contains(lower, "https:/") {
			return
		}
		link.SetAttr("href", linkPrefix+href)
	})
}

// rewriteImages makes relative image sources absolute against the raw
// content host for the given version.
func (f *Fetcher) rewriteImages(sel *goquery.Selection, version string) {
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		lower := strings.ToLower(src)
		if strings.Contains(lower, "http:/") || strings.Contains(lower, "https:/") {
			return
		}
		img.SetAttr("src", f.rawBase+version+"/"+src)
	})
}

func outerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return html
}

func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
